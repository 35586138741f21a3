package metrics

import "github.com/gofiber/fiber/v3"

func RegisterRoutes(r fiber.Router) {
	r.Get("/metrics", HandleMetrics)
}
