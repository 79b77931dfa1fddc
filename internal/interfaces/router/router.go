package router

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alejandroruanova/cbam-emissions/internal/core/services/calcsession"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/hierarchy"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/ingestion"
	"github.com/alejandroruanova/cbam-emissions/internal/interfaces/handlers"
	"github.com/alejandroruanova/cbam-emissions/internal/interfaces/middleware"
)

// Dependencies are the services the API exposes
type Dependencies struct {
	Hierarchy *hierarchy.Manager
	Sessions  *calcsession.Service
	Masters   handlers.MasterCatalog
	Uploader  *ingestion.Uploader
	Health    map[string]handlers.HealthChecker

	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Logger       *slog.Logger
}

// CreateApp builds the fiber app with every route registered.
func CreateApp(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
		BodyLimit:             deps.BodyLimit,
		ReadTimeout:           deps.ReadTimeout,
		WriteTimeout:          deps.WriteTimeout,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(deps.Logger))

	hh := &handlers.HealthHandlers{Checks: deps.Health}
	app.Get("/health", hh.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")

	h := &handlers.HierarchyHandlers{Manager: deps.Hierarchy}
	ig := api.Group("/installations")
	ig.Get("/", h.ListInstallations)
	ig.Post("/", h.CreateInstallation)
	ig.Get("/:id", h.GetInstallation)
	ig.Put("/:id", h.UpdateInstallation)
	ig.Delete("/:id", h.DeleteInstallation)

	pg := api.Group("/products")
	pg.Get("/options", h.ProductOptions)
	pg.Get("/", h.ListProducts)
	pg.Post("/", h.CreateProduct)
	pg.Get("/:id", h.GetProduct)
	pg.Put("/:id", h.UpdateProduct)
	pg.Delete("/:id", h.DeleteProduct)

	sh := &handlers.SessionHandlers{Service: deps.Sessions}
	prg := api.Group("/processes")
	prg.Get("/", h.ListProcesses)
	prg.Post("/", h.CreateProcess)
	prg.Get("/:id", h.GetProcess)
	prg.Put("/:id", h.UpdateProcess)
	prg.Delete("/:id", h.DeleteProcess)
	prg.Get("/:id/input-options", h.InputOptions)
	prg.Get("/:id/summary", sh.Summary)

	lg := api.Group("/links")
	lg.Get("/", h.ListLinks)
	lg.Put("/", h.Link)
	lg.Delete("/", h.Unlink)

	mh := &handlers.MasterHandlers{Catalog: deps.Masters}
	api.Get("/masters/:kind", mh.List)
	api.Post("/masters/:kind", mh.Create)

	sg := api.Group("/sessions")
	sg.Post("/", sh.Open)
	sg.Get("/:id", sh.Get)
	sg.Delete("/:id", sh.Close)
	sg.Post("/:id/refresh", sh.Refresh)
	sg.Post("/:id/preview", sh.Preview)
	sg.Post("/:id/entries", sh.Save)
	sg.Put("/:id/entries/:entryId", sh.Replace)
	sg.Delete("/:id/entries/:entryId", sh.DeleteEntry)

	if deps.Uploader != nil {
		uh := &handlers.UploadHandlers{Uploader: deps.Uploader}
		ug := api.Group("/uploads")
		ug.Post("/", uh.Upload)
		ug.Get("/:id", uh.Get)
	}

	return app
}
