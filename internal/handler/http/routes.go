package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// local-only administrative reads, no license required
	router.Group(func(r chi.Router) {
		r.Get("/api/health", h.health)
		r.Get("/api/desktop/mode", h.getMode)
		r.Get("/api/desktop/sync-status", h.syncStatus)
		r.Get("/api/desktop/session", h.session)
		r.Post("/api/desktop/login", h.login)
		r.Get("/api/desktop/events", h.events)
	})

	// license-gated local routes, including the data-mutating admin calls
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Post("/api/desktop/mode", h.setMode)
		r.Post("/api/desktop/sync-now", h.syncNow)
		r.Post("/api/desktop/logout", h.logout)
		r.Post("/api/desktop/refresh", h.refresh)

		r.Route("/api/local/credentials", func(r chi.Router) {
			r.Get("/", h.listCredentials)
			r.Post("/", h.createCredential)
			r.Get("/{id}", h.getCredential)
			r.Put("/{id}", h.updateCredential)
			r.Delete("/{id}", h.deleteCredential)
		})

		r.Route("/api/local/projects", func(r chi.Router) {
			r.Get("/", h.listProjects)
			r.Post("/", h.createProject)
			r.Get("/{id}", h.getProject)
			r.Put("/{id}", h.updateProject)
			r.Delete("/{id}", h.deleteProject)
			r.Get("/{id}/env", h.projectEnv)
		})

		r.Route("/api/local/chat", func(r chi.Router) {
			r.Get("/", h.chatHistory)
			r.Delete("/", h.clearChatHistory)
		})

		r.Get("/api/local/activity", h.listActivity)
	})

	// the chat send call gates itself: offline mode answers synthetically
	// before any license check
	router.Post("/api/chat/send", h.chatSend)

	// batch calls short-circuit when fully local, forward otherwise
	router.Post("/api/batch", h.batch)

	// everything else under /api/ goes to the remote service byte for byte
	router.Handle("/api/*", h.forward)

	// non-API paths serve the installed UI bundle with SPA fallback
	router.NotFound(h.serveStatic)

	return router
}
