package httpserver

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"conrelay/internal/config"
	"conrelay/internal/conversation"
	"conrelay/internal/registry"
	"conrelay/internal/security"
	"conrelay/internal/service"
	"conrelay/internal/store/sqlite"
	"conrelay/internal/ws"
)

// NewRouter constructs the main HTTP router and wires repositories, services,
// and the WebSocket endpoint.
func NewRouter(
	cfg *config.Config,
	db *sql.DB,
	hub *ws.Hub,
	reg *registry.Registry,
	store *conversation.Store,
	tokenSvc *security.TokenService,
	passwordHasher *security.PasswordHasher,
	log *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Origins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Repositories and services
	userRepo := sqlite.NewUserRepo(db)
	authSvc := service.NewAuthService(userRepo, tokenSvc, passwordHasher)
	deliverySvc := service.NewDeliveryService(reg, store, hub, log)
	presenceSvc := service.NewPresenceService(reg, hub, log)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Static client
	r.Get("/", handleIndex(cfg.StaticDir))
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))

	// REST auth surface; the socket accepts the issued token at upgrade.
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handleRegister(authSvc))
			r.Post("/login", handleLogin(authSvc))
		})

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(tokenSvc, userRepo))
			r.Get("/users/online", handleListOnlineUsers(reg))
		})
	})

	// WebSocket endpoint
	r.Get("/ws", ws.MakeHandler(hub, reg, authSvc, deliverySvc, presenceSvc, tokenSvc, cfg.Origins(), log))

	return r
}

// writeJSON is a small helper to send JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
