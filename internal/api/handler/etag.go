package handler

import (
	"net/http"
	"strings"
)

func formatETag(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return "\"" + trimmed + "\""
}

// notModified 设置 ETag，并在 If-None-Match 命中时写出 304。
func notModified(w http.ResponseWriter, r *http.Request, raw string) bool {
	etag := formatETag(raw)
	if etag == "" {
		return false
	}
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && (match == "*" || strings.Contains(match, etag)) {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}
