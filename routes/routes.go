package routes

import (
	"github.com/Dosada05/style-duel/handlers"
	"github.com/Dosada05/style-duel/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

func SetupRoutes(
	router *chi.Mux,
	tournamentHandler *handlers.TournamentHandler,
	webSocketHandler *handlers.WebSocketHandler,
	jwtSecret string,
	allowedOrigins []string,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)

	// Публичные маршруты
	router.Get("/categories", tournamentHandler.CategoriesHandler)
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Турнирные маршруты требуют аутентификации
	router.Route("/tournaments", func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/start", tournamentHandler.StartHandler)
		r.Get("/active", tournamentHandler.ActiveSessionHandler)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Post("/choice", tournamentHandler.SubmitChoiceHandler)
			r.Get("/choices", tournamentHandler.ChoiceHistoryHandler)
			r.Get("/result", tournamentHandler.ResultHandler)
		})
	})

	// WebSocket: персональная комната пользователя
	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/ws/users/{userID}", webSocketHandler.ServeWs)
	})
}
