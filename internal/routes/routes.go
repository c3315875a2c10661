package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/solacejournal/solace-backend/internal/handlers"
	"github.com/solacejournal/solace-backend/internal/middleware"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/signin", handlers.Signin)

	// Everything below requires a valid session
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/api/auth/me", handlers.Me)
		r.Post("/api/auth/logout", handlers.Logout)
		r.Post("/api/telegram/link", handlers.LinkTelegram)

		// Journal entries
		r.Post("/api/journal", handlers.CreateEntry)
		r.Get("/api/journal", handlers.GetEntries)
		r.Get("/api/journal/{id}", handlers.GetEntry)
		r.Patch("/api/journal/{id}", handlers.UpdateEntry)
		r.Delete("/api/journal/{id}", handlers.DeleteEntry)

		// Day ratings
		r.Put("/api/ratings", handlers.UpsertRating)
		r.Get("/api/ratings", handlers.GetRating)

		// Relationships and invites
		r.Get("/api/relationships/therapists", handlers.GetMyTherapists)
		r.Get("/api/relationships/clients", handlers.GetMyClients)
		r.Post("/api/relationships/disconnect", handlers.Disconnect)
		r.Post("/api/invites", handlers.CreateInvite)
		r.Post("/api/invites/accept", handlers.AcceptInvite)

		// Notification settings and history
		r.Get("/api/notifications/settings", handlers.GetSettings)
		r.Patch("/api/notifications/settings", handlers.UpdateSettings)
		r.Get("/api/notifications/history", handlers.GetHistory)
	})

	// WebSocket endpoint for the therapist live entry feed
	// (authenticates inside the handler; browsers cannot set headers here)
	r.Get("/ws/feed", handlers.EntryFeed)
}
