package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/isdelr/bill-tracker-be/internal/api/handlers"
	"github.com/isdelr/bill-tracker-be/internal/auth"
	"github.com/isdelr/bill-tracker-be/internal/metrics"
	"github.com/isdelr/bill-tracker-be/internal/services"
)

// Dependencies are the components the router wires into handlers. Google is
// optional.
type Dependencies struct {
	DB         handlers.Pinger
	Users      services.UserServiceProvider
	Categories services.CategoryServiceProvider
	Bills      services.BillServiceProvider
	Events     services.EventServiceProvider
	Uploads    *services.UploadService
	Auth       *auth.Manager
	Google     *auth.GoogleOAuth

	UploadDir      string
	AllowedOrigins []string
	Logger         zerolog.Logger
	Registry       *prometheus.Registry
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(deps.Logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(deps.DB)
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Auth, deps.Google)
	categoryHandler := handlers.NewCategoryHandler(deps.Categories)
	billHandler := handlers.NewBillHandler(deps.Bills, deps.Uploads)
	eventHandler := handlers.NewEventHandler(deps.Events)

	r.Get("/healthz", healthHandler.Check)
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadDir))))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/local-login", authHandler.LocalLogin)
		r.Get("/logout", authHandler.Logout)
		r.Get("/login", authHandler.GoogleLogin)
		r.Get("/callback", authHandler.GoogleCallback)

		// Protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.Middleware)

			r.Get("/auth/user", authHandler.User)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", categoryHandler.GetAll)
				r.Post("/", categoryHandler.Create)
				r.Put("/{id}", categoryHandler.Update)
				r.Delete("/{id}", categoryHandler.Delete)
			})

			r.Route("/bills", func(r chi.Router) {
				r.Get("/", billHandler.GetAll)
				r.Post("/", billHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", billHandler.Get)
					r.Put("/", billHandler.Update)
					r.Delete("/", billHandler.Delete)
					r.Patch("/status", billHandler.SetStatus)
					r.Post("/upload", billHandler.Upload)
				})
			})

			r.Get("/dashboard", billHandler.Dashboard)
			r.Get("/activity", eventHandler.GetRecent)
		})
	})

	return r
}
