package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/blastmusic247/blast-gear-full/internal/auth"
	"github.com/blastmusic247/blast-gear-full/internal/cart"
	"github.com/blastmusic247/blast-gear-full/internal/catalog"
	"github.com/blastmusic247/blast-gear-full/internal/checkout"
	"github.com/blastmusic247/blast-gear-full/internal/consumer"
	"github.com/blastmusic247/blast-gear-full/internal/contact"
	"github.com/blastmusic247/blast-gear-full/internal/gallery"
	h "github.com/blastmusic247/blast-gear-full/internal/http"
	"github.com/blastmusic247/blast-gear-full/internal/mongodb"
	"github.com/blastmusic247/blast-gear-full/internal/orders"
	"github.com/blastmusic247/blast-gear-full/internal/promo"
	"github.com/blastmusic247/blast-gear-full/internal/publisher"
)

type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDBName     string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    []string
	JWTSecret       string
	AdminUsername   string
	AdminPassHash   string
	HCaptchaSecret  string
	PaymentAPIURL   string
	PaymentAPIKey   string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	Postgres        orders.Credentials
}

func loadConfig() *Config {
	pgPort, err := strconv.Atoi(getEnv("POSTGRES_PORT", "5432"))
	if err != nil {
		pgPort = 5432
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "blastgear"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		JWTSecret:       getEnv("JWT_SECRET_KEY", "blastgear-secret-key-change-in-production"),
		AdminUsername:   getEnv("ADMIN_USERNAME", "admin"),
		AdminPassHash:   getEnv("ADMIN_PASSWORD_HASH", ""),
		HCaptchaSecret:  getEnv("HCAPTCHA_SECRET", ""),
		PaymentAPIURL:   getEnv("PAYMENT_API_URL", "https://api.stripe.com/v1"),
		PaymentAPIKey:   getEnv("PAYMENT_API_KEY", ""),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Postgres: orders.Credentials{
			Host:              getEnv("POSTGRES_HOST", "localhost"),
			Port:              pgPort,
			User:              getEnv("POSTGRES_USER", "postgres"),
			Password:          getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:            getEnv("POSTGRES_DB", "blastgear"),
			MigrationsDirPath: getEnv("MIGRATIONS_DIR", "migrations"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		log.SetLevel(level)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MongoDB holds the catalog, promo codes, gallery and contact messages.
	mongoDB, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer mongoDB.Client().Disconnect(context.Background())
	log.WithField("uri", cfg.MongoURI).Info("connected to MongoDB")

	// Redis mirrors per-session carts and caches catalog reads.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("redis connection failed")
	}
	log.Info("redis ping succeeded")

	// Postgres holds orders and their outbox events.
	ordersRepo, err := orders.NewRepository(&cfg.Postgres)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to Postgres")
	}
	defer ordersRepo.Close()
	if err := ordersRepo.RunMigrations(&cfg.Postgres); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}
	log.Info("orders schema up to date")

	if err := promo.EnsureIndexes(ctx, mongoDB); err != nil {
		log.WithError(err).Fatal("failed to create promo indexes")
	}
	promoRepo := promo.NewMongoRepository(mongoDB)
	promoService := promo.NewService(promoRepo, log)

	productRepo := catalog.NewCachedRepository(catalog.NewMongoRepository(mongoDB), redisClient, log)
	galleryRepo := gallery.NewMongoRepository(mongoDB)

	carts := cart.NewSessions(redisClient, log)

	charger := checkout.NewBreakerCharger(
		checkout.NewHTTPCharger(cfg.PaymentAPIURL, cfg.PaymentAPIKey), log)
	checkoutService := checkout.NewService(ordersRepo, promoService, charger, log)

	contactService := contact.NewService(
		contact.NewHCaptchaVerifier(cfg.HCaptchaSecret), mongoDB, cfg.HCaptchaSecret != "", log)

	authService := auth.NewService(auth.Credentials{
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPassHash,
	}, cfg.JWTSecret, log)

	// Outbox poller and order consumer run for the life of the process.
	poller := publisher.NewOutboxPoller(ordersRepo, log, cfg.KafkaBrokers...)
	go poller.Run(ctx)

	orderConsumer := consumer.NewOrderConsumer(promoService, log, cfg.KafkaBrokers...)
	defer orderConsumer.Close()
	go orderConsumer.Run(ctx)

	router := h.NewRouter(h.Handlers{
		Cart:           h.NewCartHandler(carts, productRepo, cfg.RequestTimeout),
		Promo:          h.NewPromoHandler(promoService, promoRepo, cfg.RequestTimeout),
		Checkout:       h.NewCheckoutHandler(checkoutService, carts, cfg.RequestTimeout),
		Orders:         h.NewOrdersHandler(ordersRepo, cfg.RequestTimeout),
		Products:       h.NewProductHandler(productRepo, cfg.RequestTimeout),
		Gallery:        h.NewGalleryHandler(galleryRepo, cfg.RequestTimeout),
		Contact:        h.NewContactHandler(contactService, cfg.RequestTimeout),
		Auth:           h.NewAuthHandler(authService, cfg.RequestTimeout),
		RequireAdmin:   authService.RequireToken,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server exited")
}
