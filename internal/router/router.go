package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskguard/api/handler"
	"github.com/fastygo/taskguard/internal/metrics"
)

type Handlers struct {
	Profile *apiHandler.ProfileHandler
	Task    *apiHandler.TaskHandler
	Audit   *apiHandler.AuditHandler
	Health  *apiHandler.HealthHandler
}

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// New registers the public routes. When m is nil neither /metrics nor
// request instrumentation is installed.
func New(handlers Handlers, authMiddleware Middleware, m *metrics.Metrics) *router.Router {
	r := router.New()

	route := func(method, path string, h fasthttp.RequestHandler) {
		if m != nil {
			h = m.Instrument(path, h)
		}
		r.Handle(method, path, h)
	}

	route(fasthttp.MethodGet, "/health", handlers.Health.Check)
	if m != nil {
		r.GET("/metrics", m.Handler())
	}

	// Protected routes
	route(fasthttp.MethodGet, "/api/v1/profile", authMiddleware(handlers.Profile.GetProfile))
	route(fasthttp.MethodGet, "/api/v1/audit-log", authMiddleware(handlers.Audit.GetAuditLog))

	route(fasthttp.MethodGet, "/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	route(fasthttp.MethodPost, "/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	route(fasthttp.MethodPut, "/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	route(fasthttp.MethodPatch, "/api/v1/tasks/{id}/status", authMiddleware(handlers.Task.UpdateTaskStatus))
	route(fasthttp.MethodDelete, "/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	return r
}
