package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias de los handlers.
type RouterDeps struct {
	Distribution *DistributionHandler
	JWTSecret    string
}

// Router registra las rutas del motor de distribución (todas protegidas).
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	distributions := api.Group("/distributions")
	distributions.Post("/accept", deps.Distribution.AcceptBatch)
	distributions.Post("/reject", deps.Distribution.RejectBatch)
	distributions.Post("/:id/cancel", deps.Distribution.CancelPending)
}
