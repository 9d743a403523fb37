package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/go-bookmarks/internal/app/service"
	"github.com/atinyakov/go-bookmarks/internal/errs"
	"github.com/atinyakov/go-bookmarks/internal/middleware"
)

const requestTimeout = 3 * time.Second

// Validator checks a bound request body.
type Validator interface {
	Struct(s any) error
}

// BookmarkHandler serves /bookmark for the owner named in the bearer token.
type BookmarkHandler struct {
	service   service.BookmarkServiceIface
	auth      service.AuthIface
	validator Validator
	logger    *zap.Logger
}

func NewBookmark(s service.BookmarkServiceIface, a service.AuthIface, v Validator, l *zap.Logger) *BookmarkHandler {
	return &BookmarkHandler{
		service:   s,
		auth:      a,
		validator: v,
		logger:    l,
	}
}

// call carries the state shared by the steps of one request.
type call struct {
	ctx      context.Context
	username string
}

// step is one fallible stage of a request.
type step func(res http.ResponseWriter, req *http.Request, c *call) error

// serve runs steps in order and renders the first error.
func (h *BookmarkHandler) serve(res http.ResponseWriter, req *http.Request, steps ...step) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	c := &call{ctx: ctx}
	for _, s := range steps {
		if err := s(res, req, c); err != nil {
			e := errs.From(err)
			h.logger.Debug("request failed",
				zap.String("method", req.Method),
				zap.String("url", req.URL.String()),
				zap.String("code", string(e.Kind)),
				zap.Error(err),
			)
			errs.Write(res, e)
			return
		}
	}
}

func (h *BookmarkHandler) authenticate(_ http.ResponseWriter, req *http.Request, c *call) error {
	claims, err := h.auth.ParseRawJWT(middleware.BearerToken(req))
	if err != nil {
		return err
	}

	c.username = claims.Username
	c.ctx = middleware.InjectUsername(c.ctx, claims.Username)
	return nil
}

type formBinder interface {
	SetForm(url.Values)
}

// bind fills dst from a JSON or form body and validates it.
func (h *BookmarkHandler) bind(dst formBinder) step {
	return func(res http.ResponseWriter, req *http.Request, _ *call) error {
		var err error
		switch mediaType(req) {
		case "application/x-www-form-urlencoded":
			req.Body = http.MaxBytesReader(res, req.Body, maxBodyBytes)
			if err = req.ParseForm(); err == nil {
				dst.SetForm(req.PostForm)
			}
		case "multipart/form-data":
			if err = req.ParseMultipartForm(maxBodyBytes); err == nil {
				dst.SetForm(req.PostForm)
			}
		default:
			err = decodeJSONBody(res, req, dst)
		}

		if err != nil {
			var mr *malformedRequest
			if errors.As(err, &mr) {
				return errs.NewMalformed(mr.status, mr.msg)
			}
			return errs.NewMalformed(http.StatusBadRequest, err.Error())
		}

		return h.validator.Struct(dst)
	}
}
