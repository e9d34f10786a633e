package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/buspass/bus_pass/internal/passes"
)

// RegisterPassRoutes wires the pass endpoints, running guards (auth and
// idempotency) ahead of each handler.
func RegisterPassRoutes(r fiber.Router, h *passes.Handler, guards ...fiber.Handler) {
	r.Post("/passes", chain(guards, h.Create)...)
	r.Get("/passes", chain(guards, h.List)...)
	r.Get("/passes/:id", chain(guards, h.Get)...)
	r.Put("/passes/:id/renew", chain(guards, h.Renew)...)
	r.Delete("/passes/:id", chain(guards, h.Delete)...)
}
