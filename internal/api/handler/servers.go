package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/creamcroissant/sub2xray/internal/link"
	"github.com/creamcroissant/sub2xray/internal/service"
	"github.com/creamcroissant/sub2xray/internal/xray"
)

// DefaultMaxDecodeBytes 限制 POST /decode 的请求体大小。
const DefaultMaxDecodeBytes = 8 << 20

// ServerHandler 暴露快照、刷新、解码与配置生成接口。
type ServerHandler struct {
	catalog       service.CatalogService
	subscriptions service.SubscriptionService
	defaults      xray.Options
	maxBody       int64
}

// NewServerHandler 创建处理器；defaults 在查询参数缺省时使用。
func NewServerHandler(catalog service.CatalogService, subscriptions service.SubscriptionService, defaults xray.Options) *ServerHandler {
	return &ServerHandler{
		catalog:       catalog,
		subscriptions: subscriptions,
		defaults:      defaults,
		maxBody:       DefaultMaxDecodeBytes,
	}
}

// List 返回当前快照，ETag 为快照 ID。
func (h *ServerHandler) List(w http.ResponseWriter, r *http.Request) {
	snap, err := h.catalog.Current(r.Context())
	if err != nil {
		respondError(w, statusFor(err), "servers.list", err)
		return
	}
	if notModified(w, r, snap.ID) {
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// Refresh 立即刷新快照。
func (h *ServerHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.catalog.Refresh(r.Context())
	if err != nil {
		respondError(w, statusFor(err), "servers.refresh", err)
		return
	}
	w.Header().Set("ETag", formatETag(snap.ID))
	respondJSON(w, http.StatusOK, map[string]any{
		"id":         snap.ID,
		"source":     snap.Source,
		"updated_at": snap.UpdatedAt,
		"servers":    len(snap.Servers),
		"failures":   len(snap.Failures),
	})
}

// Decode 解码请求体中的订阅原文，不落盘。
func (h *ServerHandler) Decode(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "servers.decode", err)
			return
		}
		respondError(w, http.StatusBadRequest, "servers.decode", err)
		return
	}

	res, err := h.subscriptions.Decode(r.Context(), body)
	if err != nil && res == nil {
		respondError(w, statusFor(err), "servers.decode", err)
		return
	}
	failures := make([]string, 0, len(res.Failures))
	for _, f := range res.Failures {
		failures = append(failures, f.Error())
	}
	records := res.Records
	if records == nil {
		records = []link.ServerRecord{}
	}
	status := http.StatusOK
	payload := map[string]any{"servers": records, "failures": failures}
	if err != nil {
		status = statusFor(err)
		payload["error"] = err.Error()
	}
	respondJSON(w, status, payload)
}

// Config 生成 {index} 对应记录的客户端配置。
func (h *ServerHandler) Config(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index <= 0 {
		respondError(w, http.StatusBadRequest, "servers.config", fmt.Errorf("invalid server index %q", chi.URLParam(r, "index")))
		return
	}
	opts, err := h.options(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "servers.config", err)
		return
	}

	doc, err := h.catalog.Config(r.Context(), index, opts)
	if err != nil {
		respondError(w, statusFor(err), "servers.config", err)
		return
	}
	tag := fmt.Sprintf("%s-%d-%t-%d", doc.SnapshotID, index, opts.AllowLAN, opts.HTTPPort)
	if notModified(w, r, tag) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Document)
}

func (h *ServerHandler) options(r *http.Request) (xray.Options, error) {
	opts := h.defaults
	query := r.URL.Query()
	if raw := strings.TrimSpace(query.Get("allow_lan")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid allow_lan %q", raw)
		}
		opts.AllowLAN = v
	}
	if raw := strings.TrimSpace(query.Get("http_port")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid http_port %q", raw)
		}
		opts.HTTPPort = v
	}
	return opts, nil
}
