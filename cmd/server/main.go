package main // Entry point package

import (
	"log"  // Logging library
	"time" // Hold window duration

	"github.com/joho/godotenv"    // Load .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/travora/booking-api/internal/checkout"   // Checkout intent normalizer
	"github.com/travora/booking-api/internal/config"     // Internal config loader
	"github.com/travora/booking-api/internal/database"   // MySQL connection helper
	"github.com/travora/booking-api/internal/handler"    // HTTP handlers
	"github.com/travora/booking-api/internal/middleware" // Redis cache + rate limit middleware
	"github.com/travora/booking-api/internal/payment"    // Payment gateway client
	"github.com/travora/booking-api/internal/queue"      // RabbitMQ consumer
	"github.com/travora/booking-api/internal/repository" // DB repositories
	"github.com/travora/booking-api/internal/router"     // Route registration
	queue_publisher "github.com/travora/booking-api/internal/service" // RabbitMQ publisher
)

func main() {
	_ = godotenv.Load() // Load .env if present; real env always wins

	cfg := config.Load() // Load environment config

	// Open the primary database.  Every repository shares this pool.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the public response cache and the token bucket limiter.
	rdb := config.NewRedisClient()

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	offers := repository.NewOfferRepo(db)
	carts := repository.NewCartRepo(db)
	vouchers := repository.NewVoucherRepo(db)
	bookings := repository.NewBookingRepo(db)
	orders := repository.NewOrderRepo(db)

	// Collaborators.
	charger := payment.NewClient(cfg.PaymentURL, cfg.PaymentAPIKey)
	normalizer := checkout.NewNormalizer(offers, vouchers)

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens)
	catalogH := &handler.CatalogHandler{Offers: offers}
	cartH := handler.NewCartHandler(handler.CartConfig{Currency: cfg.Currency}, carts, offers, vouchers)
	checkoutH := handler.NewCheckoutHandler(time.Duration(cfg.HoldWindowMin)*time.Minute, normalizer, offers, bookings)
	bookingH := handler.NewBookingHandler(bookings, offers, orders, vouchers, charger, queue_publisher.PublishBookingConfirmed)
	orderH := handler.NewOrderHandler(orders, bookings, offers)

	e := echo.New() // Create Echo instance

	// Global rate limiting; per-user once authenticated, per-IP before.
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)                  // Health check
	router.RegisterAuth(e, authH, cfg.JWTSecret) // Auth endpoints + /v1/me
	// Catalog reads go through the Redis response cache.
	router.RegisterCatalog(e, catalogH, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterCustomer(e, cartH, checkoutH, bookingH, orderH, cfg.JWTSecret)
	router.RegisterPartner(e, orderH, cfg.JWTSecret)

	// Background consumer writes confirmation notifications; it reconnects
	// forever and never takes the server down.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
