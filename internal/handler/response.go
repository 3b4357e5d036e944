package handler

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/SohomCh/drive/internal/ctxkeys"
	"github.com/SohomCh/drive/web"
)

var pages = template.Must(template.ParseFS(web.TemplatesFS, "templates/*.html"))

func renderPage(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pages.ExecuteTemplate(w, name, data)
	if err != nil {
		slog.Error("failed to render page", "page", name, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError responds with a JSON error body. The internal error detail is
// exposed only in development mode.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	body := map[string]any{"message": message}

	cfg := ctxkeys.Config(r.Context())
	if err != nil && cfg != nil && cfg.IsDevelopment() {
		body["error"] = err.Error()
	}

	writeJSON(w, status, body)
}
