package server

import (
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	gofiberws "github.com/gofiber/websocket/v2"
	"github.com/patrickmn/go-cache"

	"sync-notes-be/internal/bootstrap"
	"sync-notes-be/internal/config"
	"sync-notes-be/internal/pkg/serverutils"
	"sync-notes-be/internal/websocket"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024,
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger))

	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	jwtMiddleware := serverutils.NewJwtMiddleware(cfg.Auth.JwtSecret)
	throttleCounters := cache.New(2*cfg.Auth.ThrottleWindow, 10*time.Minute)

	api := app.Group("/api")

	c.AuthController.RegisterRoutes(api)

	// Everything under a user's tree is authenticated and throttled.
	user := api.Group("/users/:username",
		jwtMiddleware,
		serverutils.ThrottleMiddleware(throttleCounters, cfg.Auth.ThrottleLimit, cfg.Auth.ThrottleWindow),
	)
	c.NotebookController.RegisterRoutes(user)
	c.NoteController.RegisterRoutes(user)
	c.TaskController.RegisterRoutes(user)

	// Sync-hint push channel.
	app.Use("/ws", func(ctx *fiber.Ctx) error {
		if gofiberws.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/sync", jwtMiddleware, gofiberws.New(func(conn *gofiberws.Conn) {
		principal, ok := conn.Locals(serverutils.PrincipalLocal).(serverutils.Principal)
		if !ok {
			conn.Close()
			return
		}
		websocket.ServeWs(c.WebSocketHub, conn, principal.UserId)
	}))
}
