// Package app wires repositories, services and handlers into a Fiber application.
package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"time"

	"arenda/internal/config"
	"arenda/internal/handlers"
	"arenda/internal/middleware"
	"arenda/internal/repositories"
	"arenda/internal/services"
	"arenda/internal/uploads"
	"arenda/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"gorm.io/gorm"
)

// New builds the application. publisher may be nil to disable listing events.
func New(cfg config.Config, db *gorm.DB, store *uploads.Store, publisher services.EventPublisher) (*fiber.App, error) {
	views, err := fs.Sub(web.Views, "views")
	if err != nil {
		return nil, fmt.Errorf("failed to load views: %w", err)
	}
	engine := html.NewFileSystem(http.FS(views), ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		BodyLimit:    cfg.MaxUploadBytes,
		ErrorHandler: errorHandler,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New()) // Request logger

	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	listingRepo := repositories.NewGORMListingRepository(db)

	// --- Initialize Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.SessionTTL)
	listingService := services.NewListingService(listingRepo, categoryRepo, store, publisher)

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService, cfg.CookieSecure)
	listingHandler := handlers.NewListingHandler(listingService, cfg.RecentLimit)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"events": publisher != nil,
		})
	})

	app.Use("/uploads", filesystem.New(filesystem.Config{
		Root:   store.HTTPFileSystem(),
		MaxAge: 3600,
	}))

	// --- Page Routes ---
	app.Use(middleware.LoadSession(authService))
	requireAuth := middleware.AuthRequired()
	authHandler.RegisterRoutes(app, requireAuth)
	listingHandler.RegisterRoutes(app, requireAuth)

	return app, nil
}

// errorHandler renders the error page for errors no handler dealt with,
// such as unknown routes or oversized bodies.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "something went wrong, please try again"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	} else {
		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}

	renderErr := c.Status(code).Render("error", fiber.Map{
		"Title":       "Error",
		"Status":      code,
		"Message":     message,
		"CurrentUser": middleware.CurrentUsername(c),
	})
	if renderErr != nil {
		log.Printf("Error rendering error page: %v", renderErr)
		return c.Status(code).SendString(message)
	}
	return nil
}
