package routes

import (
	"net/http"

	"github.com/SohomCh/drive/internal/app"
	"github.com/SohomCh/drive/internal/handler"
	"github.com/SohomCh/drive/internal/middleware"
)

func SetupRoutes(a *app.App) http.Handler {
	auth := handler.NewAuthHandler(a.AuthService)
	files := handler.NewFileHandler(a.FileService, a.Cfg.MaxUploadSize)
	health := handler.NewHealthHandler(a.DB)

	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /health", health.Health)

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("GET /user/register", middleware.RequireGuest(auth.RegisterPage))
	mux.HandleFunc("POST /user/register", rateLimiter(middleware.RequireGuest(auth.Register)))
	mux.HandleFunc("GET /user/login", middleware.RequireGuest(auth.LoginPage))
	mux.HandleFunc("POST /user/login", rateLimiter(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("POST /user/logout", auth.Logout)

	// Protected routes
	mux.HandleFunc("GET /home", middleware.RequireAuth(files.HomePage))
	mux.HandleFunc("POST /upload", middleware.RequireAuth(files.Upload))
	mux.HandleFunc("GET /download/{fileId}", middleware.RequireAuth(files.Download))

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/home", http.StatusSeeOther)
	})

	// Global middleware - executed in order (top to bottom)
	h := middleware.Chain(
		mux,
		middleware.Config(a.Cfg),
		middleware.Recover,
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.Auth(a.AuthService, a.UserService),
	)

	return h
}
