package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"dceo-backend/internal/handlers"
	"dceo-backend/internal/middleware"
	"dceo-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	interviewHandler *handlers.InterviewHandler,
	structureHandler *handlers.StructureHandler,
	knowledgeHandler *handlers.KnowledgeHandler,
	feedbackHandler *handlers.FeedbackHandler,
	assistantHandler *handlers.AssistantHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── Interview Routes ────
		r.Route("/interviews", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/topics", interviewHandler.Topics)
			r.Post("/", interviewHandler.Start)
			r.Get("/current", interviewHandler.Current)
			r.Get("/{id}", interviewHandler.Get)
			r.Post("/{id}/answers", interviewHandler.SubmitAnswer)
			r.Delete("/{id}", interviewHandler.Reset)

			// Structure refinement lives under its session
			r.Get("/{id}/structure", structureHandler.View)
			r.Post("/{id}/structure/guidelines", structureHandler.ApplyGuidelines)
			r.Post("/{id}/structure/confirm", structureHandler.Confirm)
		})

		// ──── Knowledge Collection Routes ────
		r.Route("/knowledge", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/categories", knowledgeHandler.Categories)
			r.Get("/questions", knowledgeHandler.Question)
			r.Post("/responses", knowledgeHandler.SubmitResponse)
		})

		// ──── Feedback Routes ────
		r.Route("/feedback", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", feedbackHandler.Submit)
			r.Get("/", feedbackHandler.List)
			r.Patch("/{id}", feedbackHandler.Review)
		})

		// ──── Assistant Routes ────
		r.Route("/assistant", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/ask", assistantHandler.Ask)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
