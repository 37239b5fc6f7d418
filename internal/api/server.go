package api

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/suipilot/suipilot/internal/services"
)

type APIServer struct {
	app        *fiber.App
	intent     services.IntentService
	dispatcher services.DispatcherService
	executor   services.ExecutorService
	vault      services.VaultService
	port       int
}

func NewAPIServer(
	intent services.IntentService,
	dispatcher services.DispatcherService,
	executor services.ExecutorService,
	vault services.VaultService,
) *APIServer {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Add middleware
	app.Use(cors.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	server := &APIServer{
		app:        app,
		intent:     intent,
		dispatcher: dispatcher,
		executor:   executor,
		vault:      vault,
	}
	server.setupRoutes()
	return server
}

func (s *APIServer) setupRoutes() {
	v1 := s.app.Group("/api/v1")

	v1.Post("/chat", s.handleChat)
	v1.Post("/execute", s.handleExecute)
	v1.Post("/contacts/save", s.handleSaveContact)
	v1.Get("/contacts/list", s.handleListContacts)

	// Health check
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
}

// Start starts the server on the given port
func (s *APIServer) Start(port int) error {
	s.port = port
	go func() {
		if err := s.app.Listen(fmt.Sprintf(":%d", port)); err != nil {
			log.Printf("Error starting API server: %v\n", err)
		}
	}()
	return nil
}

func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}

func (s *APIServer) GetPort() int {
	return s.port
}

// App exposes the underlying Fiber app for tests.
func (s *APIServer) App() *fiber.App {
	return s.app
}
