package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SohomCh/drive/internal/ctxkeys"
)

// Recover catches panics from anywhere below and answers with a generic
// 500. In development the panic value is included in the response body.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			slog.Error("panic recovered",
				"panic", rec,
				"method", r.Method,
				"path", r.URL.Path,
			)

			body := map[string]any{"message": "Something went wrong!"}
			cfg := ctxkeys.Config(r.Context())
			if cfg != nil && cfg.IsDevelopment() {
				body["error"] = fmt.Sprintf("%v", rec)
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(body)
		}()

		next.ServeHTTP(w, r)
	})
}
