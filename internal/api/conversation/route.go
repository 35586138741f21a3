package conversation

import "github.com/gofiber/fiber/v3"

func RegisterRoutes(r fiber.Router) {
	grp := r.Group("/conversations")

	grp.Post("/", HandleNewSession)
	grp.Get("/:sessionID", HandleGetSession)
	grp.Delete("/:sessionID", HandleDeleteSession)
}
