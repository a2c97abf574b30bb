package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/render"

	"github.com/yourorg/listings-api/internal/cache"
	"github.com/yourorg/listings-api/internal/upstream"
)

// WriteError renders {"error": code, "detail": detail} with status.
func WriteError(w http.ResponseWriter, req *http.Request, status int, code, detail string) {
	render.Status(req, status)
	body := map[string]any{"error": code}
	if detail != "" {
		body["detail"] = detail
	}
	render.JSON(w, req, body)
}

// WriteFetchError maps catalog errors onto responses: 404 for missing
// items, 202 while another request fills the cache, 504 on timeouts and
// 502 for any other upstream failure.
func WriteFetchError(w http.ResponseWriter, req *http.Request, err error) {
	switch {
	case errors.Is(err, upstream.ErrNotFound):
		WriteError(w, req, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, cache.ErrInProgress):
		render.Status(req, http.StatusAccepted)
		render.JSON(w, req, map[string]any{"ok": false, "in_progress": true})
	case errors.Is(err, context.DeadlineExceeded):
		WriteError(w, req, http.StatusGatewayTimeout, "upstream_timeout", err.Error())
	default:
		WriteError(w, req, http.StatusBadGateway, "upstream_error", err.Error())
	}
}

// QueryInt reads a positive integer query parameter, returning def when it
// is absent or invalid.
func QueryInt(req *http.Request, key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(req.URL.Query().Get(key)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// PathID parses a positive numeric URL parameter.
func PathID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil && id > 0
}
