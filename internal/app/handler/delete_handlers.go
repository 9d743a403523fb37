package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/go-bookmarks/internal/models"
)

// Delete removes a bookmark the caller owns and returns what was removed.
func (h *BookmarkHandler) Delete(res http.ResponseWriter, req *http.Request) {
	h.serve(res, req, h.authenticate, func(res http.ResponseWriter, req *http.Request, c *call) error {
		b, err := h.service.Delete(c.ctx, c.username, chi.URLParam(req, "id"))
		if err != nil {
			return err
		}

		h.writeJSON(res, http.StatusOK, models.NewBookmarkResponse(b))
		return nil
	})
}
