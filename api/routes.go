package main

import (
	"net/http"
)

func composeRoutes(app *application) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthcheck", app.healthCheckHandler)

	mux.HandleFunc("POST /register", app.registerUserHandler)
	mux.HandleFunc("POST /login", app.loginUserHandler)

	mux.HandleFunc("GET /me", app.requireAuth(app.currentUserHandler))
	mux.HandleFunc("GET /users", app.requireAuth(app.getUsersHandler))
	mux.HandleFunc("GET /users/{id}", app.requireAuth(app.getUserHandler))

	mux.HandleFunc("GET /tasks", app.requireAuth(app.getTasksHandler))
	mux.HandleFunc("POST /tasks", app.requireAuth(app.createTaskHandler))
	mux.HandleFunc("GET /tasks/{id}", app.requireAuth(app.getTaskHandler))
	mux.HandleFunc("PUT /tasks/{id}", app.requireAuth(app.updateTaskHandler))
	mux.HandleFunc("DELETE /tasks/{id}", app.requireAuth(app.deleteTaskHandler))
	mux.HandleFunc("POST /tasks/reorder", app.requireAuth(app.reorderTasksHandler))
	mux.HandleFunc("GET /tasks/by-status/{status}", app.requireAuth(app.tasksByStatusHandler))
	mux.HandleFunc("GET /tasks/stats", app.requireAuth(app.taskStatsHandler))

	var handler http.Handler = mux
	if len(app.config.cors.trustedOrigins) > 0 {
		handler = app.enableCORS(handler)
	}
	if app.config.limiter.enabled {
		handler = app.rateLimit(handler)
	}
	return handler
}
