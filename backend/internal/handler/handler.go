package handler

import (
	"context"

	"github.com/itchan-dev/feed/backend/internal/service"
	"github.com/itchan-dev/feed/shared/config"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Renderer turns post content into safe HTML.
type Renderer interface {
	Render(content string) string
}

type Handler struct {
	auth     service.AuthService
	post     service.PostService
	query    service.QueryService
	health   HealthChecker
	renderer Renderer
	cfg      *config.Config
}

func New(auth service.AuthService, post service.PostService, query service.QueryService, health HealthChecker, renderer Renderer, cfg *config.Config) *Handler {
	return &Handler{
		auth:     auth,
		post:     post,
		query:    query,
		health:   health,
		renderer: renderer,
		cfg:      cfg,
	}
}
