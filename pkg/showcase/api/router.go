package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/tendant/simple-showcase/pkg/showcase"
	"github.com/tendant/simple-showcase/pkg/showcase/chat"
)

// RouterConfig carries the dependencies for the HTTP surface.
type RouterConfig struct {
	Service   showcase.Service
	BlobStore showcase.BlobStore
	Streamer  chat.Streamer
	JWTSecret string
}

// NewRouter assembles the showcase HTTP API:
//
//	POST /api/admin/login         admin login
//	GET  /api/admin/profile       authenticated profile (admin)
//	POST /api/content/submit      anonymous submission
//	GET  /api/content/approved    public approved list
//	GET  /api/content/all         full list (admin)
//	GET  /api/content/pending     moderation queue (admin)
//	GET  /api/content/rejected    rejected list (admin)
//	PUT  /api/content/{id}        edit item (admin)
//	PUT  /api/content/{id}/status set status (admin)
//	PUT  /api/content/{id}/approve
//	PUT  /api/content/{id}/reject
//	DELETE /api/content/{id}      delete item (admin)
//	POST /api/chat                assistant relay (SSE)
//	GET  /api/chat-stats          usage statistics
//	GET  /api/health              liveness
//	GET  /uploads/{key}           stored thumbnails
func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(cfg.Service, cfg.JWTSecret)
	contentHandler := NewContentHandler(cfg.Service, cfg.BlobStore)
	chatHandler := NewChatHandler(cfg.Service, cfg.Streamer)

	requireAdmin := func(r chi.Router) {
		r.Use(jwtauth.Verifier(authHandler.TokenAuth()))
		r.Use(jwtauth.Authenticator)
		r.Use(AdminOnly)
	}

	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", Health)
		r.Post("/chat", chatHandler.Chat)
		r.Get("/chat-stats", chatHandler.ChatStats)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				requireAdmin(r)
				r.Get("/profile", authHandler.Profile)
			})
		})

		r.Route("/content", func(r chi.Router) {
			r.Post("/submit", contentHandler.SubmitContent)
			r.Get("/approved", contentHandler.ListApproved)

			r.Group(func(r chi.Router) {
				requireAdmin(r)
				r.Get("/all", contentHandler.ListAll)
				r.Get("/pending", contentHandler.ListPending)
				r.Get("/rejected", contentHandler.ListRejected)
				r.Put("/{id}", contentHandler.UpdateContent)
				r.Put("/{id}/status", contentHandler.UpdateStatus)
				r.Put("/{id}/approve", contentHandler.ApproveContent)
				r.Put("/{id}/reject", contentHandler.RejectContent)
				r.Delete("/{id}", contentHandler.DeleteContent)
			})
		})
	})

	r.Get("/uploads/{key}", contentHandler.ServeUpload)

	return r
}
