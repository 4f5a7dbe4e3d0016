package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-media-cms/internal/config"
	"go-media-cms/internal/handler"
	"go-media-cms/internal/middleware"
	"go-media-cms/internal/model"
	"go-media-cms/internal/repository"
	"go-media-cms/internal/service"
	"go-media-cms/internal/ws"
	"go-media-cms/pkg/database"
	"go-media-cms/pkg/jwt"
	"go-media-cms/pkg/logger"
	"go-media-cms/pkg/mailer"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	sugar, err := logger.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer sugar.Sync()

	// 2. Setup Database
	db, err := database.Connect(cfg.DatabaseURL, !cfg.IsProduction())
	if err != nil {
		sugar.Fatalw("database connection failed", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		sugar.Fatalw("migration failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Seed genres and sync the first-admin flag
	seed(ctx, db, sugar)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub(sugar)
	go wsHub.Run(ctx)

	// 5. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	genreRepo := repository.NewGenreRepo(db)
	castRepo := repository.NewCastRepo(db)
	movieRepo := repository.NewMovieRepo(db)
	seriesRepo := repository.NewSeriesRepo(db)
	episodeRepo := repository.NewEpisodeRepo(db)
	postRepo := repository.NewPostRepo(db)

	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	mail := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		FromName: cfg.MailFromName,
	}, sugar)

	authService := service.NewAuthService(userRepo, tokens, mail, service.AuthConfig{
		FrontendURL:   cfg.FrontendURL,
		ResetTokenTTL: cfg.ResetTokenTTL,
	}, sugar)
	userService := service.NewUserService(userRepo)
	catalogService := service.NewCatalogService(genreRepo, castRepo)
	dashService := service.NewDashboardService(userRepo, map[model.Kind]service.Counter{
		model.KindMovie:   movieRepo,
		model.KindSeries:  seriesRepo,
		model.KindEpisode: episodeRepo,
		model.KindPost:    postRepo,
	})

	router := &handler.Router{
		Auth:         handler.NewAuthHandler(authService, cfg.CookieName, cfg.IsProduction(), sugar),
		Users:        handler.NewUserHandler(userService, sugar),
		Roles:        handler.NewRoleHandler(),
		Catalog:      handler.NewCatalogHandler(catalogService, sugar),
		Dashboard:    handler.NewDashboardHandler(dashService, sugar),
		Movies:       handler.NewContentHandler(service.NewMovieService(movieRepo, genreRepo, wsHub, sugar), sugar),
		Series:       handler.NewContentHandler(service.NewSeriesService(seriesRepo, genreRepo, wsHub, sugar), sugar),
		Episodes:     handler.NewContentHandler(service.NewEpisodeService(episodeRepo, wsHub, sugar), sugar),
		Posts:        handler.NewContentHandler(service.NewPostService(postRepo, wsHub, sugar), sugar),
		RequireAuth:  middleware.RequireAuth(userRepo, tokens, cfg.CookieName),
		OptionalAuth: middleware.OptionalAuth(userRepo, tokens, cfg.CookieName),
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	// Middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: cfg.CORSOrigins != "*",
	}))

	// WebSocket Route: revalidation events for frontends
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !wsHub.Join(c) {
			return
		}
		defer wsHub.Leave(c)

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 7. Routes
	router.Mount(app.Group("/api/v1"))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			sugar.Errorw("server stopped", "error", err)
			stop()
		}
	}()
	sugar.Infow("server started", "port", cfg.Port, "env", cfg.Env)

	<-ctx.Done()

	sugar.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		sugar.Fatalw("server forced to shutdown", "error", err)
	}
	sugar.Info("Server exited")
}

// seed inserts the default genres and records that the first admin exists
// when the database already holds one, so later signups are not promoted.
func seed(ctx context.Context, db *gorm.DB, log *zap.SugaredLogger) {
	if err := repository.NewGenreRepo(db).SeedDefaults(ctx); err != nil {
		log.Warnw("failed to seed genres", "error", err)
	}

	flags := repository.NewFlagRepo(db)
	if set, err := flags.IsSet(ctx, model.FlagAdminBootstrapped); err == nil && set {
		return
	}
	exists, err := repository.NewUserRepo(db).AdminExists(ctx)
	if err != nil {
		log.Warnw("failed to look up existing admins", "error", err)
		return
	}
	if exists {
		if err := flags.MarkAdminBootstrapped(ctx); err != nil {
			log.Warnw("failed to sync admin flag", "error", err)
		}
	}
}
