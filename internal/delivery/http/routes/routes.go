package routes

import (
	"mockraft/internal/delivery/http/handler"
	v1 "mockraft/internal/delivery/http/routes/v1"
	"mockraft/internal/metrics"
	"mockraft/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
)

type Registry struct {
	health *handler.HealthHandler
	chatWS *ws.Handler
	v1     v1.Handlers
}

func NewRegistry(health *handler.HealthHandler, chatWS *ws.Handler, api v1.Handlers) *Registry {
	return &Registry{health: health, chatWS: chatWS, v1: api}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerMetrics(app)
	r.registerWS(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.health == nil {
		return
	}
	app.Get("/health", r.health.Check)
}

func (r *Registry) registerMetrics(app *fiber.App) {
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
}

func (r *Registry) registerWS(app *fiber.App) {
	if r.chatWS == nil {
		return
	}
	app.Get("/ws/chat", r.chatWS.HandleChatWS)
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.v1)
}
