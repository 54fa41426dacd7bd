package http

import (
	"log/slog"
	"net/http"

	"guestregistration/internal/delivery/http/controllers"
	"guestregistration/internal/delivery/http/helpers"
	"guestregistration/internal/delivery/http/middleware"
	"guestregistration/internal/domain"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterDeps carries everything NewRouter wires together.
type RouterDeps struct {
	Logger         *slog.Logger
	Registrations  *controllers.RegistrationController
	RateLimiter    *middleware.RateLimiter
	StaffVerifier  domain.TokenVerifier
	AllowedOrigins []string

	// TrustProxyHeaders enables chi's RealIP, which rewrites RemoteAddr from
	// client-supplied headers. The rate limiter keys on RemoteAddr.
	TrustProxyHeaders bool
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()
	limit := deps.RateLimiter.Limit
	staff := middleware.RequireStaff(deps.StaffVerifier, deps.Logger)

	// Guest routes
	mux.HandleFunc("GET /invitations/{token}", limit(deps.Registrations.InspectInvitation))
	mux.HandleFunc("POST /registrations", limit(deps.Registrations.Submit))

	// Staff routes
	mux.HandleFunc("POST /registrations/{registrantID}/cancel", staff(deps.Registrations.Cancel))
	mux.HandleFunc("POST /check-ins", staff(deps.Registrations.CheckIn))

	// Ops
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(deps.Logger, handler)
	handler = middleware.CORS(deps.AllowedOrigins, handler)
	if deps.TrustProxyHeaders {
		handler = chimw.RealIP(handler)
	}
	handler = chimw.RequestID(handler)
	handler = chimw.Recoverer(handler)
	return handler
}
