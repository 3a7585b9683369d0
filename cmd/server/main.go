package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/UGONES/church-site-api/internal/config"     // Internal config loader
	"github.com/UGONES/church-site-api/internal/database"   // MySQL connection helper
	"github.com/UGONES/church-site-api/internal/handler"    // HTTP handlers
	"github.com/UGONES/church-site-api/internal/middleware" // Cache and rate-limit middleware
	"github.com/UGONES/church-site-api/internal/queue"      // RabbitMQ consumer
	"github.com/UGONES/church-site-api/internal/repository" // Data access layer
	"github.com/UGONES/church-site-api/internal/router"     // Route registration
)

func main() {
	// Load .env if present; real deployments set variables directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load() // Load environment config

	// Connect to MySQL and verify the connection before serving traffic.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	// Repositories share the single pooled *sql.DB.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db)
	regs := repository.NewRegistrationRepo(db)
	favorites := repository.NewFavoriteRepo(db)
	sermons := repository.NewSermonRepo(db)
	ministries := repository.NewMinistryRepo(db)
	testimonials := repository.NewTestimonialRepo(db)

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens)
	rsvpH := handler.NewRSVPHandler(regs, events)
	favH := handler.NewFavoriteHandler(favorites)
	contentH := handler.NewContentHandler(events, regs, sermons, ministries, testimonials)
	adminH := handler.NewAdminHandler(events, regs, sermons, ministries, testimonials)

	e := echo.New() // Create Echo instance

	// Redis backs both the response cache for public browse endpoints and
	// the token-bucket rate limiter applied globally.  Both middlewares
	// degrade to pass-through when Redis is unreachable.
	rdb := config.NewRedisClient()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	pubCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)                                       // Health check
	router.RegisterAuth(e, authH, cfg.JWTSecret)                   // Auth and /v1/me
	router.RegisterPublic(e, contentH, pubCache)                   // Guest browse endpoints
	router.RegisterMember(e, rsvpH, favH, contentH, cfg.JWTSecret) // RSVP, favorites, testimonial submission
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)                 // Admin management

	// Consume confirmed-registration events in the background; the consumer
	// maintains its own reconnect loop.
	go func() {
		if err := queue.StartRegistrationConsumer(); err != nil {
			log.Printf("registration consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
