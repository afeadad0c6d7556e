package deliveries

import "github.com/gofiber/fiber/v2"

// chain returns a fresh slice of base followed by handlers, so shared
// middleware stacks are never aliased between routes.
func chain(base []fiber.Handler, handlers ...fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(base)+len(handlers))
	out = append(out, base...)
	return append(out, handlers...)
}
