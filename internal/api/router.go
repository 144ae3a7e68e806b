package api

import (
	"log"
	"net/http"

	"github.com/example/device-loans/internal/api/middleware"
	"github.com/example/device-loans/internal/auth"
)

type RouterConfig struct {
	Handlers     *Handlers
	AuthHandlers *AuthHandlers
	JWTService   *auth.Service
	Metrics      http.Handler // optional, mounted at /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	authn := middleware.Auth(cfg.JWTService)
	readScope := middleware.RequireScope(auth.ScopeDeviceRead)
	writeScope := middleware.RequireScope(auth.ScopeDeviceWrite)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	mux.HandleFunc("/healthz", cfg.Handlers.Health)

	if cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics)
	}

	mux.HandleFunc("/auth/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "only POST is supported")
			return
		}
		cfg.AuthHandlers.Token(w, r)
	})

	mux.Handle("/devices", authn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			readScope(http.HandlerFunc(cfg.Handlers.GetDevices)).ServeHTTP(w, r)
		case http.MethodPost:
			writeScope(http.HandlerFunc(cfg.Handlers.CreateDevice)).ServeHTTP(w, r)
		default:
			respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		}
	})))

	mux.Handle("/devices/", authn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			readScope(http.HandlerFunc(cfg.Handlers.GetDevice)).ServeHTTP(w, r)
		case http.MethodPut:
			writeScope(http.HandlerFunc(cfg.Handlers.UpdateDevice)).ServeHTTP(w, r)
		case http.MethodDelete:
			adminRole(http.HandlerFunc(cfg.Handlers.DeleteDevice)).ServeHTTP(w, r)
		default:
			respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		}
	})))

	mux.Handle("/items", authn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			readScope(http.HandlerFunc(cfg.Handlers.GetInventoryItems)).ServeHTTP(w, r)
		case http.MethodPost:
			writeScope(http.HandlerFunc(cfg.Handlers.CreateInventoryItem)).ServeHTTP(w, r)
		default:
			respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		}
	})))

	mux.Handle("/items/", authn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			readScope(http.HandlerFunc(cfg.Handlers.GetInventoryItem)).ServeHTTP(w, r)
		default:
			respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		}
	})))

	return withLogging(mux)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[API] %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
