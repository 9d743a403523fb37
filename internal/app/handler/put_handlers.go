package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/go-bookmarks/internal/models"
)

// Update replaces title and url of a bookmark the caller owns.
// A missing id is answered like an unknown one.
func (h *BookmarkHandler) Update(res http.ResponseWriter, req *http.Request) {
	var body models.UpdateBookmarkRequest

	h.serve(res, req, h.authenticate, h.bind(&body), func(res http.ResponseWriter, req *http.Request, c *call) error {
		b, err := h.service.Update(c.ctx, c.username, chi.URLParam(req, "id"), body.Title, body.URL)
		if err != nil {
			return err
		}

		h.writeJSON(res, http.StatusOK, models.NewBookmarkResponse(b))
		return nil
	})
}
