package handler

import (
	"net/http"

	"github.com/atinyakov/go-bookmarks/internal/models"
)

// Create stores a bookmark for the caller and echoes its title and url.
func (h *BookmarkHandler) Create(res http.ResponseWriter, req *http.Request) {
	var body models.CreateBookmarkRequest

	h.serve(res, req, h.authenticate, h.bind(&body), func(res http.ResponseWriter, _ *http.Request, c *call) error {
		b, err := h.service.Create(c.ctx, c.username, body.Title, body.URL)
		if err != nil {
			return err
		}

		h.writeJSON(res, http.StatusOK, models.NewBookmarkResponse(b))
		return nil
	})
}
