package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/lingua-api/internal/api"
	apiMiddleware "github.com/phrazzld/lingua-api/internal/api/middleware"
	"github.com/rs/cors"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: app.config.Server.CORSAllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.logger)
	vocabHandler := api.NewVocabularyHandler(app.vocabService, app.logger)
	contentHandler := api.NewContentHandler(app.contentService, app.logger)
	practiceHandler := api.NewPracticeHandler(app.journalService, app.lessonService, app.writingService, app.logger)
	immersionHandler := api.NewImmersionHandler(app.immersionService, app.logger)
	healthHandler := app.healthHandler()
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/me", authHandler.Me)

			r.Route("/vocabulary", func(r chi.Router) {
				r.Post("/", vocabHandler.SaveWord)
				r.Get("/", vocabHandler.ListWords)
				r.Get("/flashcards", vocabHandler.Flashcards)
				r.Post("/translate", vocabHandler.Translate)
				r.Post("/import", vocabHandler.Import)
				r.Get("/{id}", vocabHandler.GetWord)
				r.Delete("/{id}", vocabHandler.DeleteWord)
				r.Post("/{id}/review", vocabHandler.Review)
			})

			r.Post("/content/sources", contentHandler.CreateSource)
			r.Get("/content/sources", contentHandler.ListSources)
			r.Get("/content/sources/{id}", contentHandler.GetSource)
			r.Post("/content/import", contentHandler.ImportContent)

			r.Get("/immersion/content", immersionHandler.Reading)
			r.Get("/immersion/cultural", immersionHandler.Cultural)

			r.Post("/journal", practiceHandler.CreateJournalEntry)
			r.Get("/journal", practiceHandler.ListJournalEntries)

			r.Post("/lessons", practiceHandler.GenerateLesson)
			r.Get("/lessons", practiceHandler.ListLessons)
			r.Get("/lessons/{id}", practiceHandler.GetLesson)

			r.Post("/writing/exercise", practiceHandler.WritingExercise)
			r.Post("/writing/check", practiceHandler.CheckWriting)
			r.Get("/writing/typing", practiceHandler.TypingExercise)
		})
	})

	return r
}
