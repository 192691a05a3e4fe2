// Package handler 实现 serve 模式的 HTTP 接口。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/creamcroissant/sub2xray/internal/link"
	"github.com/creamcroissant/sub2xray/internal/service"
	"github.com/creamcroissant/sub2xray/internal/transport"
	"github.com/creamcroissant/sub2xray/internal/xray"
)

// Helper to respond with JSON
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to encode response JSON", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, action string, err error) {
	respondJSON(w, status, map[string]any{
		"error":  err.Error(),
		"action": action,
	})
}

// statusFor 把领域错误映射为 HTTP 状态码。
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, xray.ErrUnsupportedProtocol):
		return http.StatusUnprocessableEntity
	case errors.Is(err, xray.ErrConfig),
		errors.Is(err, link.ErrEnvelope),
		errors.Is(err, link.ErrLinkDecode):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoSubscription):
		return http.StatusServiceUnavailable
	case errors.Is(err, transport.ErrHTTPStatus),
		errors.Is(err, transport.ErrInvalidSubscription),
		errors.Is(err, transport.ErrTooLarge):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
