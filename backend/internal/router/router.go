package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itchan-dev/feed/backend/internal/setup"
	mw "github.com/itchan-dev/feed/shared/middleware"
	"github.com/itchan-dev/feed/shared/middleware/metrics"
	rl "github.com/itchan-dev/feed/shared/middleware/ratelimiter"
)

// New creates and configures a chi router with all the routes.
// IMPORTANT! ratelimiters set with .Use limit requests for all endpoints combined in that group
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Public.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(mw.SecurityHeaders(deps.Config.Public.SecureHeaders))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.With(
			mw.RateLimit(rl.New(1.0/10, 3, time.Hour), mw.GetIP), // 1 per 10 sec by IP, bursts of 3
			mw.GlobalRateLimit(rl.Rps100()),
		).Post("/signup", h.Signup)
		r.With(
			mw.RateLimit(rl.OnceInSecond(), mw.GetIP),
			mw.GlobalRateLimit(rl.Rps100()),
		).Post("/signin", h.Signin)
	})

	r.Route("/feed", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMw.NeedAuth())
			r.Use(mw.RateLimit(rl.Rps100(), mw.GetUserID)) // 100 RPS per user

			r.Get("/posts", h.ListPosts)
			r.Get("/myposts", h.ListMyPosts)
			r.Get("/sortByTitle", h.SortByTitle)
			r.Get("/groupByType", h.GroupByType)
			search := mw.RateLimit(rl.Rps10(), mw.GetUserID)
			r.With(search).Get("/searchFromContent", h.SearchFromContent)
			r.With(search).Get("/searchFromContent/", h.SearchFromContent)
			r.With(search).Get("/searchFromContent/{word}", h.SearchFromContent)
			r.Get("/post/{postId}", h.GetPost)
			r.Get("/attachments/{ref}", h.GetAttachment)

			// writes: 1 per second per user, bursts of 5
			writes := mw.RateLimit(rl.New(1, 5, time.Hour), mw.GetUserID)
			r.With(writes).Post("/addpost", h.CreatePost)
			r.With(writes).Put("/post/{postId}", h.UpdatePost)
			r.With(writes).Delete("/post/{postId}", h.DeletePost)
		})
	})

	return r
}
