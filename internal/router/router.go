package router

import (
	"net/http"
	"strings"

	"attire-store/internal/auth"
	"attire-store/internal/handler"
	"attire-store/internal/middleware"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Config carries the handlers and cross-cutting pieces the router wires up.
type Config struct {
	Products   *handler.ProductHandler
	Orders     *handler.OrderHandler
	Auth       *handler.AuthHandler
	Admin      *handler.AdminHandler
	Tokens     *auth.TokenProvider
	Redis      *redis.Client // nil disables rate limiting
	UploadsDir string        // "" disables local upload serving
	Logger     zerolog.Logger
}

// New creates the HTTP router with all routes and middleware configured.
func New(cfg Config) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	authenticate := middleware.Authenticate(cfg.Tokens, cfg.Logger)
	requireAdmin := middleware.RequireAdmin(cfg.Logger)
	rateLimit := middleware.RateLimit(cfg.Redis, cfg.Logger)

	// Public auth endpoints, rate limited per client IP.
	mux.Handle("/api/auth/register", rateLimit(http.HandlerFunc(cfg.Auth.Register)))
	mux.Handle("/api/auth/login", rateLimit(http.HandlerFunc(cfg.Auth.Login)))

	// Public catalogue.
	productRoutes := func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/products/slug/"):
			cfg.Products.GetBySlug(w, r)
		case r.URL.Path != "/api/products" && r.URL.Path != "/api/products/":
			cfg.Products.GetByID(w, r)
		default:
			cfg.Products.List(w, r)
		}
	}
	mux.HandleFunc("/api/products", productRoutes)
	mux.HandleFunc("/api/products/", productRoutes)

	// Checkout and orders require authentication.
	mux.Handle("/api/checkout", authenticate(http.HandlerFunc(cfg.Orders.Checkout)))

	orderRoutes := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/orders" || r.URL.Path == "/api/orders/" {
			cfg.Orders.List(w, r)
			return
		}
		cfg.Orders.GetByID(w, r)
	}
	mux.Handle("/api/orders", authenticate(http.HandlerFunc(orderRoutes)))
	mux.Handle("/api/orders/", authenticate(http.HandlerFunc(orderRoutes)))

	// Admin surface requires the admin role.
	adminRoutes := func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case path == "/api/admin/products" || path == "/api/admin/products/":
			cfg.Admin.CreateProduct(w, r)
		case strings.HasPrefix(path, "/api/admin/products/"):
			if r.Method == http.MethodDelete {
				cfg.Admin.DeleteProduct(w, r)
				return
			}
			cfg.Admin.UpdateProduct(w, r)
		case strings.HasSuffix(path, "/status") && strings.HasPrefix(path, "/api/admin/orders/"):
			cfg.Admin.UpdateOrderStatus(w, r)
		case path == "/api/admin/orders" || path == "/api/admin/orders/":
			cfg.Admin.ListOrders(w, r)
		case path == "/api/admin/analytics":
			cfg.Admin.Analytics(w, r)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}
	mux.Handle("/api/admin/", authenticate(requireAdmin(http.HandlerFunc(adminRoutes))))

	// Locally stored product images.
	if cfg.UploadsDir != "" {
		mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	}

	// Apply middleware in order: Recovery -> Logging -> CORS
	var h http.Handler = mux
	h = middleware.CORS(h)
	h = middleware.Logging(cfg.Logger)(h)
	h = middleware.Recovery(cfg.Logger)(h)

	return h
}
