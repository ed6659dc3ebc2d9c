package v1

import (
	"achievify/internal/api/v1/handlers"
	"achievify/internal/config"
	"achievify/internal/middleware"
	"achievify/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// bodySlack leaves room for multipart framing and form fields around a
// maximum size file.
const bodySlack = 1 << 20

// NewApp builds the Fiber app with its middleware chain and every route.
func NewApp(deps *config.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:             int(deps.Config.UploadMaxBytes) + bodySlack,
		ErrorHandler:          handlers.ErrorHandler(deps.Log),
		DisableStartupMessage: true,
	})

	app.Use(middleware.RequestLogger(deps.Log, deps.Metrics))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	limiterCfg := limiter.Config{
		Max:        deps.Config.RateLimitMax,
		Expiration: deps.Config.RateLimitWindow,
	}
	if deps.Redis != nil {
		limiterCfg.Storage = middleware.NewRedisStorage(deps.Redis, "limiter:")
	}
	app.Use(limiter.New(limiterCfg))

	h := handlers.New(deps)
	app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	app.Get("/"+storage.PublicPrefix+"/*", h.ServeUpload)

	RegisterRoutes(app, h, deps)
	return app
}

func RegisterRoutes(app *fiber.App, h *handlers.Handler, deps *config.Dependencies) {
	api := app.Group("/api")
	if deps.Auth.TokensEnabled() {
		api.Use(middleware.Identity(deps.Auth, deps.Log))
	}

	api.Get("/health", h.Health)

	// Auth
	api.Post("/register", h.Register)
	api.Post("/login", h.Login)

	// Todos
	api.Get("/todos", h.ListTodos)
	api.Post("/todos", h.CreateTodo)
	api.Put("/todos/:id", h.UpdateTodo)
	api.Delete("/todos/:id", h.DeleteTodo)

	// Timetable
	api.Get("/timetable", h.GetTimetable)
	api.Post("/timetable", h.UploadTimetable)
	api.Delete("/timetable/:id", h.DeleteTimetable)

	// Planner
	api.Get("/planner", h.GetPlanner)
	api.Post("/planner", h.SavePlanner)

	// Wall
	api.Get("/wall", h.ListWall)
	api.Post("/wall/quote", h.AddQuote)
	api.Post("/wall/image", h.UploadWallImage)
	api.Delete("/wall/:id", h.DeleteWallItem)
}
