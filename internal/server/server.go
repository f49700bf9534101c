package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"ministry-shop/internal/cart"
	"ministry-shop/internal/config"
	"ministry-shop/internal/events"
	"ministry-shop/internal/media"
	custommiddleware "ministry-shop/internal/middleware"
	"ministry-shop/internal/payment"
	"ministry-shop/internal/repository"
	"ministry-shop/internal/service"
	"ministry-shop/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config   *config.Config
	logger   *zap.Logger
	db       *sql.DB
	redis    *redis.Client
	producer *events.Producer
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) (*Server, error) {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.IsDevelopment()))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Connect Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Connect Kafka; an empty broker list disables event publishing
	producer, err := events.NewProducer(cfg.Kafka.Brokers, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect kafka producer: %w", err)
	}
	if producer == nil {
		logger.Info("Kafka brokers not configured, order events disabled")
	}

	// Initialize repositories
	profileRepo := repository.NewProfileRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Cart storage and external clients
	cartStore := cart.NewStore(redisClient, time.Duration(cfg.Cart.TTLHours)*time.Hour)
	paymentClient := payment.NewClient(cfg.Paystack.BaseURL, cfg.Paystack.SecretKey, logger)
	mediaClient := media.NewClient(cfg.Media.UploadURL, cfg.Media.UploadPreset, logger)

	// Initialize services
	authService := service.NewAuthService(profileRepo, refreshTokenRepo, cfg.JWT.Secret)
	catalogService := service.NewCatalogService(productRepo, categoryRepo, reviewRepo, settingsRepo)
	accountService := service.NewAccountService(addressRepo, wishlistRepo, messageRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, producer)
	checkoutService := service.NewCheckoutService(cartStore, paymentClient, orderRepo, productRepo, settingsRepo, producer, logger)

	// Initialize handlers
	authHandler := transport.NewAuthHandler(authService, logger)
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	cartHandler := transport.NewCartHandler(cartStore, catalogService, checkoutService, logger)
	checkoutHandler := transport.NewCheckoutHandler(checkoutService, logger)
	accountHandler := transport.NewAccountHandler(accountService, orderService, catalogService, logger)
	adminHandler := transport.NewAdminHandler(catalogService, orderService, accountService, profileRepo, mediaClient, logger)

	// Create auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)

	// Rate limit unauthenticated writes
	rateLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 30,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:public",
	}, logger)

	// Register routes
	router.Group(func(r chi.Router) {
		r.Use(rateLimiter)
		authHandler.RegisterRoutes(r, authMiddleware)
		accountHandler.RegisterRoutes(r, authMiddleware)
	})
	catalogHandler.RegisterRoutes(router)
	cartHandler.RegisterRoutes(router, authMiddleware)
	checkoutHandler.RegisterRoutes(router, authMiddleware)
	adminHandler.RegisterRoutes(router, authMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:   cfg,
		logger:   logger,
		db:       db,
		redis:    redisClient,
		producer: producer,
	}

	return server, nil
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	s.producer.Close()

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
