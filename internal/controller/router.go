package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Route("/room", func(r chi.Router) {
			r.Use(c.authMw)
			r.Post("/", c.createRoom)
			r.Route("/{room-id}", func(r chi.Router) {
				r.Get("/", c.getRoom)
				r.Delete("/", c.deleteRoom)
				r.Patch("/permissions", c.updatePermissions)
				r.Post("/members", c.addMember)
			})
		})

		r.Route("/ws", func(r chi.Router) {
			r.With(c.authMw).Post("/ticket", c.createConnectToken)
			r.Get("/", c.ws)
		})
	})

	return r
}
