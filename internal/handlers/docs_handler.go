package handlers

import (
	"embed"
	"net/http"
)

//go:embed templates/*.html templates/openapi.yaml
var templatesFS embed.FS

// DocsHandler serves the API reference pages and the OpenAPI document.
type DocsHandler struct {
	spec []byte
}

// NewDocsHandler creates a DocsHandler serving the bundled OpenAPI document.
func NewDocsHandler() *DocsHandler {
	spec, _ := templatesFS.ReadFile("templates/openapi.yaml")
	return &DocsHandler{spec: spec}
}

// NewDocsHandlerWithSpec creates a DocsHandler serving spec instead.
func NewDocsHandlerWithSpec(spec []byte) *DocsHandler {
	return &DocsHandler{spec: spec}
}

// ScalarUI serves the Scalar API reference at /docs.
func (h *DocsHandler) ScalarUI(w http.ResponseWriter, r *http.Request) {
	h.page(w, "templates/scalar.html")
}

// Redoc serves the ReDoc page at /docs/redoc.
func (h *DocsHandler) Redoc(w http.ResponseWriter, r *http.Request) {
	h.page(w, "templates/redoc.html")
}

// OpenAPISpec serves the OpenAPI YAML.
func (h *DocsHandler) OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	if len(h.spec) == 0 {
		http.Error(w, "OpenAPI specification not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/x-yaml")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.spec)
}

func (h *DocsHandler) page(w http.ResponseWriter, name string) {
	html, err := templatesFS.ReadFile(name)
	if err != nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(html)
}
