package setup

import (
	"context"
	"fmt"

	"github.com/itchan-dev/feed/backend/internal/handler"
	"github.com/itchan-dev/feed/backend/internal/markdown"
	"github.com/itchan-dev/feed/backend/internal/service"
	"github.com/itchan-dev/feed/backend/internal/storage/fs"
	"github.com/itchan-dev/feed/backend/internal/storage/pg"
	"github.com/itchan-dev/feed/backend/internal/storage/s3"
	"github.com/itchan-dev/feed/shared/config"
	"github.com/itchan-dev/feed/shared/jwt"
	"github.com/itchan-dev/feed/shared/logger"
	mw "github.com/itchan-dev/feed/shared/middleware"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config         *config.Config
	Storage        *pg.Storage
	Handler        *handler.Handler
	AuthMiddleware *mw.Auth
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := storage.Migrate(ctx); err != nil {
		storage.Cleanup()
		return nil, err
	}

	attachments, err := newAttachmentStorage(cfg)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}

	tokens := jwt.New(cfg.JwtKey(), cfg.JwtTTL())

	auth := service.NewAuth(storage, service.Bcrypt{Cost: cfg.Public.BcryptCost}, tokens)
	post := service.NewPost(storage, attachments)
	query := service.NewQuery(storage, &cfg.Public)

	h := handler.New(auth, post, query, storage, markdown.New(), cfg)

	return &Dependencies{
		Config:         cfg,
		Storage:        storage,
		Handler:        h,
		AuthMiddleware: mw.NewAuth(tokens),
	}, nil
}

func newAttachmentStorage(cfg *config.Config) (service.AttachmentStorage, error) {
	a := cfg.Public.Attachments
	switch a.Backend {
	case config.AttachmentBackendFS:
		logger.Log.Info("storing attachments on disk", "root", a.FsRoot)
		return fs.New(a.FsRoot)
	case config.AttachmentBackendS3:
		logger.Log.Info("storing attachments in s3", "bucket", a.S3.Bucket, "endpoint", a.S3.Endpoint)
		client := s3.NewClient(a.S3, cfg.Private.S3AccessKeyId, cfg.Private.S3SecretAccessKey)
		return s3.New(client, a.S3.Bucket, a.S3.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown attachment backend %q", a.Backend)
	}
}
