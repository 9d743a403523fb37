// Package server assembles the HTTP router of the bookmark service.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/go-bookmarks/internal/app/handler"
	"github.com/atinyakov/go-bookmarks/internal/errs"
	"github.com/atinyakov/go-bookmarks/internal/middleware"
)

// Init mounts /ping and the /bookmark resource. PUT and DELETE accept the id
// both as a path segment and without one; the latter answers NOT_FOUND.
func Init(h *handler.BookmarkHandler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithGzip)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errs.Write(w, &errs.Error{
			Kind:    errs.KindValidation,
			Status:  http.StatusMethodNotAllowed,
			Message: http.StatusText(http.StatusMethodNotAllowed),
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errs.Write(w, &errs.Error{
			Kind:    errs.KindNotFound,
			Status:  http.StatusNotFound,
			Message: "Route not found",
		})
	})

	r.Get("/ping", h.PingDB)

	r.Route("/bookmark", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)

		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	return r
}
