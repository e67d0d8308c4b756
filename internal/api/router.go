package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and returns the main HTTP router.
func NewRouter(comp Component, host HostConfig, dev DevControls, bus EventBus, info Info) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)
	r.Use(middleware.CleanPath)

	h := &Handlers{comp: comp, host: host, dev: dev, events: bus, info: info}

	// Demo status
	r.Get("/api", h.getStatus)
	r.Get("/api/", h.getStatus)

	// Working state edits
	r.Patch("/api/demo", h.updateDemo)
	r.Post("/api/demo/counter/increment", h.incrementCounter)
	r.Post("/api/demo/counter/decrement", h.decrementCounter)

	// State operations
	r.Post("/api/demo/save", h.saveState)
	r.Post("/api/demo/restore", h.restoreState)
	r.Post("/api/demo/clear", h.clearState)

	// Error surface
	r.Post("/api/demo/error/expand", h.expandError)
	r.Post("/api/demo/error/collapse", h.collapseError)
	r.Post("/api/demo/error/clear", h.clearError)

	// Operation log
	r.Get("/api/log", h.getLog)
	r.Post("/api/demo/log/clear", h.clearLog)

	// Host metadata
	r.Get("/api/info", h.getInfo)

	// Development controls
	r.Post("/api/dev/offline", h.setOffline)

	// SSE
	r.Get("/api/subscribe", h.sseEvents)

	return r
}

// corsMiddleware adds permissive CORS headers for local network access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
