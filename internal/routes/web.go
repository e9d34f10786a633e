package routes

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"

	"github.com/buspass/bus_pass/internal/web"
)

// RegisterWebRoutes serves the embedded single-page UI at /. API paths are
// left to the JSON handlers.
func RegisterWebRoutes(app *fiber.App) error {
	assets, err := fs.Sub(web.Assets, "static")
	if err != nil {
		return err
	}
	app.Use("/", filesystem.New(filesystem.Config{
		Root:  http.FS(assets),
		Index: "index.html",
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api")
		},
	}))
	return nil
}
