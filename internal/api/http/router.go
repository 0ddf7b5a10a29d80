package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"rentalhub-backend/internal/security"
	"rentalhub-backend/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Auth     service.AuthService
	Users    service.UserService
	Products service.ProductService
	Rentals  service.RentalService
}

type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter builds the JSON API under /api plus /healthz.
func NewRouter(svcs Services, authenticator *security.Authenticator, store Pinger, opts Options) http.Handler {
	router := mux.NewRouter()
	router.Use(recoverer, timeout(opts.RequestTimeout))
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	router.HandleFunc("/healthz", healthHandler(store)).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use((&authMiddleware{authenticator: authenticator}).Middleware)

	ah := &authHandler{auth: svcs.Auth, users: svcs.Users}
	api.HandleFunc("/auth/register", ah.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", ah.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify-token", ah.VerifyToken).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", ah.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/profile", ah.GetProfile).Methods(http.MethodGet)
	api.HandleFunc("/auth/profile", ah.UpdateProfile).Methods(http.MethodPut)
	api.HandleFunc("/auth/users", ah.ListUsers).Methods(http.MethodGet)
	api.HandleFunc("/auth/users/{id}", ah.GetUser).Methods(http.MethodGet)
	api.HandleFunc("/auth/users/{id}", ah.DeleteUser).Methods(http.MethodDelete)

	ph := &productHandler{products: svcs.Products}
	api.HandleFunc("/products", ph.List).Methods(http.MethodGet)
	api.HandleFunc("/products/locations", ph.Locations).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", ph.Get).Methods(http.MethodGet)
	api.HandleFunc("/products", ph.Create).Methods(http.MethodPost)
	api.HandleFunc("/products/{id}", ph.Update).Methods(http.MethodPut)
	api.HandleFunc("/products/{id}", ph.Delete).Methods(http.MethodDelete)

	rh := &rentalHandler{rentals: svcs.Rentals}
	api.HandleFunc("/rentals", rh.Create).Methods(http.MethodPost)
	api.HandleFunc("/rentals", rh.List).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id}", rh.Get).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id}/status", rh.UpdateStatus).Methods(http.MethodPut)
	api.HandleFunc("/rentals/{id}/payment", rh.UpdatePayment).Methods(http.MethodPut)

	var h http.Handler = router
	if len(opts.AllowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(opts.AllowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Authorization", "Content-Type", requestIDHeader}),
			handlers.ExposedHeaders([]string{requestIDHeader}),
		)(h)
	}
	return requestLogger(handlers.ProxyHeaders(h))
}

func healthHandler(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, envelope{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, envelope{"status": "ok"})
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, envelope{"error": "Route not found", "code": "NOT_FOUND"})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, envelope{"error": "Method not allowed", "code": "METHOD_NOT_ALLOWED"})
}
