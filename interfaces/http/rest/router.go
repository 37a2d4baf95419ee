package rest

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"linkup-backend/infrastructure/config"
	"linkup-backend/interfaces/http/rest/handlers"
	"linkup-backend/interfaces/http/rest/middleware"
	"linkup-backend/pkg/auth"
)

// Router creates and configures the HTTP router
type Router struct {
	config        *config.Config
	connections   *handlers.ConnectionHandler
	notifications *handlers.NotificationHandler
	accounts      *handlers.AccountHandler
	validator     *auth.JWTValidator
	logger        *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	connections *handlers.ConnectionHandler,
	notifications *handlers.NotificationHandler,
	accounts *handlers.AccountHandler,
	validator *auth.JWTValidator,
	logger *zap.Logger,
) *Router {
	return &Router{
		config:        cfg,
		connections:   connections,
		notifications: notifications,
		accounts:      accounts,
		validator:     validator,
		logger:        logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.linkup.dev"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			// Registration stays outside the authenticated group
			r.Post("/", rt.accounts.CreateAccount)

			r.Group(func(r chi.Router) {
				r.Use(rt.authenticate())
				r.Get("/me", rt.accounts.GetMe)
				r.Get("/{username}", rt.accounts.GetByUsername)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(rt.authenticate())

			r.Route("/connections", func(r chi.Router) {
				r.Get("/", rt.connections.ListConnections)
				r.Post("/request/{targetID}", rt.connections.SendRequest)
				r.Get("/status/{targetID}", rt.connections.Status)
				r.Delete("/{targetID}", rt.connections.RemoveConnection)

				r.Route("/requests", func(r chi.Router) {
					r.Get("/", rt.connections.ListIncoming)
					r.Get("/sent", rt.connections.ListOutgoing)
					r.Put("/{requestID}/accept", rt.connections.AcceptRequest)
					r.Put("/{requestID}/reject", rt.connections.RejectRequest)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", rt.notifications.List)
				r.Get("/unread-count", rt.notifications.UnreadCount)
				r.Put("/{notificationID}/read", rt.notifications.MarkRead)
			})
		})
	})

	return router
}

func (rt *Router) authenticate() func(next http.Handler) http.Handler {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		return middleware.AuthenticateForLambda()
	}
	return middleware.Authenticate(rt.validator, rt.logger)
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
