package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: c.corsAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIdHeader},
		ExposedHeaders: []string{requestIdHeader},
		MaxAge:         300,
	}))

	if c.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", c.metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", c.healthz)
		r.Get("/stats", c.getStats)

		r.Route("/rooms", func(r chi.Router) {
			r.Post("/", c.createRoom)
			r.Route("/{room-id}", func(r chi.Router) {
				r.Get("/", c.getRoom)
				r.Post("/join", c.joinRoom)
				r.Post("/disconnect", c.disconnectMember)
				r.Post("/chat", c.sendChat)
				r.Post("/status", c.updateStatus)
				r.Post("/pause", c.pause)
				r.Post("/resume", c.resume)
			})
		})

		r.Route("/ws", func(r chi.Router) {
			r.Get("/rooms/{room-id}", c.connect)
		})
	})

	return r
}
