// main.go
//
// devshare - a social platform API for developers to publish and discuss project posts
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of devshare.
// devshare is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// devshare is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with devshare.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/devshare/internal/config"
	"github.com/localnerve/devshare/internal/database"
	"github.com/localnerve/devshare/internal/handlers"
	"github.com/localnerve/devshare/internal/logger"
	"github.com/localnerve/devshare/internal/middleware"
	"github.com/localnerve/devshare/internal/storage"
	"github.com/localnerve/devshare/internal/types"

	_ "github.com/localnerve/devshare/docs/api" // Swagger docs
)

// @title DevShare API
// @version 1.0.0
// @description Social platform API for developer project posts
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/devshare
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Blob store for post attachments
	blobs, err := storage.NewFSBlobStore(cfg.BlobDir)
	if err != nil {
		log.Fatalf("Failed to initialize blob store: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    80 << 20, // multipart posts carry up to 64MB of files
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("devshare")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Health
	healthHandler := &handlers.HealthHandler{DB: db, Cfg: cfg}
	app.Get("/health", healthHandler.Health)

	// API routes under /api
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	authHandler := &handlers.AuthHandler{DB: db, Cfg: cfg}
	postsHandler := &handlers.PostsHandler{DB: db, Blobs: blobs}
	profileHandler := &handlers.ProfileHandler{DB: db, Blobs: blobs}
	socialHandler := &handlers.SocialHandler{DB: db}
	notificationsHandler := &handlers.NotificationsHandler{DB: db}

	authRequired := middleware.AuthRequired(cfg, db)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authRequired, authHandler.Logout)

	// Post creation and feed
	api.Post("/posts", authRequired, postsHandler.CreatePost)
	api.Get("/feed", authRequired, postsHandler.Feed)
	api.Get("/feed/:post_id", authRequired, postsHandler.FeedDetail)

	// Profile and post management
	profile := api.Group("/profile", authRequired)
	profile.Get("/", profileHandler.GetProfile)
	profile.Delete("/", profileHandler.DeleteAccount)
	profile.Get("/posts", profileHandler.OwnPosts)
	profile.Get("/posts/:id", profileHandler.GetOwnPost)
	profile.Put("/posts/:id", profileHandler.EditPost)
	profile.Delete("/posts/:id", profileHandler.DeletePost)
	profile.Get("/posts/:id/files/:file_id", profileHandler.DownloadFile)
	profile.Get("/users/:user_id", profileHandler.PublicProfile)
	profile.Get("/users/:user_id/posts", profileHandler.UserPosts)

	// Social graph
	social := api.Group("/social", authRequired)
	social.Post("/posts/:id/like", socialHandler.TogglePostLike)
	social.Get("/posts/:id/likes", socialHandler.ListPostLikes)
	social.Post("/posts/:id/comments", socialHandler.CreateComment)
	social.Get("/posts/:id/comments", socialHandler.ListComments)
	social.Put("/comments/:id", socialHandler.UpdateComment)
	social.Delete("/comments/:id", socialHandler.DeleteComment)
	social.Post("/comments/:id/likes", socialHandler.ToggleCommentLike)
	social.Get("/comments/:id/likes", socialHandler.ListCommentLikes)
	social.Post("/comments/:id/replies", socialHandler.CreateReply)
	social.Get("/comments/:id/replies", socialHandler.ListReplies)
	social.Put("/replies/:id", socialHandler.UpdateReply)
	social.Delete("/replies/:id", socialHandler.DeleteReply)
	social.Post("/replies/:id/likes", socialHandler.ToggleReplyLike)
	social.Get("/replies/:id/likes", socialHandler.ListReplyLikes)

	// Notifications
	notifications := api.Group("/notifications", authRequired)
	notifications.Get("/", notificationsHandler.List)
	notifications.Get("/unread_count", notificationsHandler.UnreadCount)
	notifications.Post("/mark_all_read", notificationsHandler.MarkAllRead)
	notifications.Post("/clear_all", notificationsHandler.ClearAll)
	notifications.Post("/:id/read", notificationsHandler.MarkRead)
	notifications.Delete("/:id", notificationsHandler.Delete)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Service errors carry their own status and type tag
	if ce, ok := err.(*types.CustomError); ok {
		code = ce.Code
		message = ce.Message
		errorType = ce.Type
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
