package handler

import (
	"context"
	"net/http"

	"github.com/atinyakov/go-bookmarks/internal/errs"
)

// List returns every bookmark owned by the caller, [] when there are none.
func (h *BookmarkHandler) List(res http.ResponseWriter, req *http.Request) {
	h.serve(res, req, h.authenticate, func(res http.ResponseWriter, _ *http.Request, c *call) error {
		bookmarks, err := h.service.List(c.ctx, c.username)
		if err != nil {
			return err
		}

		h.writeJSON(res, http.StatusOK, bookmarks)
		return nil
	})
}

// PingDB reports whether the store is reachable.
func (h *BookmarkHandler) PingDB(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	if err := h.service.PingContext(ctx); err != nil {
		errs.Write(res, err)
		return
	}

	res.WriteHeader(http.StatusOK)
}
