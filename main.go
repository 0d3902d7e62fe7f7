package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Jatomit/UNLIMITED-TELECOM/config"
	checkoutControllers "github.com/Jatomit/UNLIMITED-TELECOM/controllers/checkout"
	"github.com/Jatomit/UNLIMITED-TELECOM/logger"
	"github.com/Jatomit/UNLIMITED-TELECOM/metrics"
	"github.com/Jatomit/UNLIMITED-TELECOM/models"
	"github.com/Jatomit/UNLIMITED-TELECOM/notify"
	"github.com/Jatomit/UNLIMITED-TELECOM/paystack"
	"github.com/Jatomit/UNLIMITED-TELECOM/routes"
)

func main() {
	// Load environment variables; a missing .env is fine
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log, err := logger.New(os.Getenv("APP_ENV"))
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	db := initDatabase(cfg, log)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatal("auto-migrate failed", zap.Error(err))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.PaystackSecretKey == "" {
		log.Warn("PAYSTACK_SECRET_KEY is not set; payments and webhooks will be refused")
	}
	if cfg.AdminAPIKey == "" {
		log.Warn("ADMIN_API_KEY is not set; the admin console is locked")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(reg, "storefront")

	r := gin.New()
	r.Use(gin.Recovery(), logger.Gin(log), serverMetrics.Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.GET("/metrics", gin.WrapH(metrics.Handler(reg)))

	// Serve uploaded product images
	r.Static("/uploads", cfg.UploadDir)

	// Order notifications: the admin feed always, mail and Kafka when configured
	hub := notify.NewHub()
	fanout := notify.Fanout{hub}
	if mailer := notify.NewMailer(cfg.SendGridAPIKey, cfg.MailFrom); mailer != nil {
		fanout = append(fanout, mailer)
	}
	publisher := notify.NewPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
	if publisher != nil {
		fanout = append(fanout, publisher)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Warn("close kafka writer", zap.Error(err))
			}
		}()
	}

	svc := &checkoutControllers.Service{
		DB:       db,
		Gateway:  paystack.NewClient(cfg.PaystackSecretKey, cfg.PaystackBaseURL, cfg.PaystackTimeout),
		Notifier: fanout,
	}

	routes.SetupRoutes(r, routes.Deps{DB: db, Config: cfg, Checkout: svc, Hub: hub})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server running", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// initDatabase sets up the GORM DB connection
func initDatabase(cfg *config.Config, log *zap.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("DB handle failed", zap.Error(err))
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db
}
