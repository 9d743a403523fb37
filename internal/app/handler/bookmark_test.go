package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/atinyakov/go-bookmarks/internal/app/service"
	"github.com/atinyakov/go-bookmarks/internal/errs"
	"github.com/atinyakov/go-bookmarks/internal/mocks"
	"github.com/atinyakov/go-bookmarks/internal/validation"
)

const (
	goodToken = "good-token"
	owner     = "alice"
)

type testHandler struct {
	*BookmarkHandler
	service *mocks.MockBookmarkServiceIface
	auth    *mocks.MockAuthIface
}

func newTestHandler(t *testing.T) *testHandler {
	ctrl := gomock.NewController(t)

	mockService := mocks.NewMockBookmarkServiceIface(ctrl)
	mockAuth := mocks.NewMockAuthIface(ctrl)
	v := validation.New(regexp.MustCompile(`^[a-z0-9]+$`))

	return &testHandler{
		BookmarkHandler: NewBookmark(mockService, mockAuth, v, zap.NewNop()),
		service:         mockService,
		auth:            mockAuth,
	}
}

func (h *testHandler) expectAuth() {
	h.auth.EXPECT().ParseRawJWT(goodToken).Return(&service.Claims{Username: owner}, nil)
}

func (h *testHandler) expectAuthFailure(token string) {
	h.auth.EXPECT().ParseRawJWT(token).Return(nil, errs.NewUnauthorized(errors.New("bad token")))
}

// muxRequestWithParam attaches the chi route parameter id to the request.
func muxRequestWithParam(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func newRequest(method, target, contentType string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+goodToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

func TestServe_StopsAtFirstFailingStep(t *testing.T) {
	h := newTestHandler(t)

	var ran []string
	record := func(name string, err error) step {
		return func(http.ResponseWriter, *http.Request, *call) error {
			ran = append(ran, name)
			return err
		}
	}

	w := httptest.NewRecorder()
	h.serve(w, httptest.NewRequest(http.MethodGet, "/bookmark", nil),
		record("first", nil),
		record("second", errs.NewNotFound("42")),
		record("third", nil),
	)

	assert.Equal(t, []string{"first", "second"}, ran)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"err":{"code":"NOT_FOUND","status":404,"error":"Bookmark not found.","id":"42"}}`, w.Body.String())
}

func TestServe_UnclassifiedErrorIsStoreError(t *testing.T) {
	h := newTestHandler(t)

	w := httptest.NewRecorder()
	h.serve(w, httptest.NewRequest(http.MethodGet, "/bookmark", nil),
		func(http.ResponseWriter, *http.Request, *call) error {
			return errors.New("connection reset by peer")
		},
	)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
	assert.Contains(t, w.Body.String(), `"code":"STORE_ERROR"`)
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		token  string
		ok     bool
	}{
		{name: "bearer header", header: "Bearer " + goodToken, token: goodToken, ok: true},
		{name: "cookie fallback", cookie: goodToken, token: goodToken, ok: true},
		{name: "no token", token: "", ok: false},
		{name: "bad token", header: "Bearer forged", token: "forged", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)
			if tt.ok {
				h.expectAuth()
			} else {
				h.expectAuthFailure(tt.token)
			}

			req := httptest.NewRequest(http.MethodGet, "/bookmark", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "token", Value: tt.cookie})
			}

			c := &call{ctx: req.Context()}
			err := h.authenticate(httptest.NewRecorder(), req, c)

			if !tt.ok {
				require.Error(t, err)
				assert.Equal(t, errs.KindUnauthorized, errs.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, owner, c.username)
		})
	}
}
