package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/syslvlup/syslvlup/internal/api/handler"
	"github.com/syslvlup/syslvlup/internal/api/middleware"
	"github.com/syslvlup/syslvlup/internal/services/auth"
	"github.com/syslvlup/syslvlup/internal/services/syncstore"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	SyncStore   *syncstore.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	syncHandler := handler.NewSyncHandler(cfg.SyncStore)
	authHandler := handler.NewAuthHandler(cfg.AuthService)

	authMiddleware := middleware.Auth(cfg.AuthService)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.AuthService)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Sync routes; a bearer token is optional but must match the user
	sync := api.NewRoute().Subrouter()
	sync.Use(optionalAuthMiddleware)
	sync.HandleFunc("/sync", syncHandler.Sync).Methods(http.MethodPost)
	sync.HandleFunc("/user/{userId}", syncHandler.GetUser).Methods(http.MethodGet)

	// Account routes
	api.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/device-link/redeem", authHandler.RedeemDeviceLink).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/verify", authHandler.Verify).Methods(http.MethodGet)
	protected.HandleFunc("/device-link", authHandler.CreateDeviceLink).Methods(http.MethodPost)

	api.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	return r
}
