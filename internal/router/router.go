package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"chatroom-backend/internal/handlers"
	"chatroom-backend/internal/middleware"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	chatHandler *handlers.ChatHandler,
	allowedOrigins []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(allowedOrigins))

	// Health check
	r.Get("/", handlers.Health)

	// ──── Auth Routes (public) ────
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
	})

	// ──── Chat Routes ────
	r.Group(func(r chi.Router) {
		r.Use(jwtAuth.Middleware)
		r.Post("/chat", chatHandler.Chat)
	})

	return r
}
