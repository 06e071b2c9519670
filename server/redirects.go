package server

import (
	"net/http"
	"net/url"
)

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithParams helper for htmx-aware redirects carrying query parameters
func redirectWithParams(w http.ResponseWriter, r *http.Request, path string, params url.Values) {
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	redirectSuccess(w, r, path)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
