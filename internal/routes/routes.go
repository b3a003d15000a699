package routes

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/templui/sfss/internal/app"
	"github.com/templui/sfss/internal/handler"
	"github.com/templui/sfss/internal/middleware"
)

// SetupRoutes builds the HTTP handler. ctx bounds background work such as rate limiter cleanup.
func SetupRoutes(ctx context.Context, app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	upload := handler.NewUploadHandler(app.ShareService, app.AccessService)
	files := handler.NewFileHandler(app.ShareService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	// ============================================================================
	// PROTECTED ROUTES (/api/*)
	// ============================================================================

	// Upload
	mux.HandleFunc("POST /api/upload/presigned-url", middleware.RequireAuth(upload.PresignedURL))
	mux.HandleFunc("POST /api/upload/confirm", middleware.RequireAuth(upload.Confirm))

	// Download (rate limited, guards access code guessing)
	downloadLimiter := middleware.RateLimit(middleware.NewRateLimiter(ctx, app.Cfg.DownloadRateLimit, app.Cfg.DownloadRateWindow))
	mux.HandleFunc("GET /api/upload/download/{id}", downloadLimiter(middleware.RequireAuth(upload.Download)))

	// Owner's files
	mux.HandleFunc("GET /api/files", middleware.RequireAuth(files.List))
	mux.HandleFunc("GET /api/files/{id}", middleware.RequireAuth(files.Get))
	mux.HandleFunc("DELETE /api/files/{id}", middleware.RequireAuth(files.Delete))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", handler.NotFound)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService),
		middleware.Metrics, // Last: the mux sets r.Pattern on the request it receives
	)
}
