package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/homeclick-store/internal/config"
	"github.com/flicky/homeclick-store/internal/discount"
	"github.com/flicky/homeclick-store/internal/handler"
	"github.com/flicky/homeclick-store/internal/identity"
	"github.com/flicky/homeclick-store/internal/middleware"
	"github.com/flicky/homeclick-store/internal/notify"
	"github.com/flicky/homeclick-store/internal/repository"
	"github.com/flicky/homeclick-store/internal/service"
	"github.com/flicky/homeclick-store/internal/session"
	"github.com/flicky/homeclick-store/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("load config", "error", err)
		os.Exit(1)
	}
	log := newLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.DB.DSN())
	if err != nil {
		log.Error("parse db config", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = cfg.DB.MaxConns

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}
	if err := repository.EnsureSchema(ctx, dbPool); err != nil {
		log.Error("apply schema", "error", err)
		os.Exit(1)
	}
	log.Info("connected to PostgreSQL")

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// RabbitMQ
	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error("connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()

	pubCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer pubCh.Close()

	consumeCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer consumeCh.Close()

	if err := worker.SetupRabbitMQ(consumeCh, cfg.RabbitMQ.NotificationQueue); err != nil {
		log.Error("setup RabbitMQ", "error", err)
		os.Exit(1)
	}
	log.Info("connected to RabbitMQ")

	// Discounts
	rules, err := discount.ParseRules(cfg.Discount.Codes)
	if err != nil {
		log.Error("parse discount codes", "error", err)
		os.Exit(1)
	}

	// Repositories
	store := repository.NewStore(dbPool)
	repos := repository.NewRepositories(dbPool)

	sessions := session.NewRedisStore(redisClient, cfg.JWT.Expiration)
	requestor := notify.NewRequestor(notify.NewAMQPPublisher(pubCh, cfg.RabbitMQ.NotificationQueue), log)

	// Services
	authSvc := service.NewAuthService(store, repos.Users, sessions, requestor, cfg.JWT.Secret, cfg.JWT.Expiration)
	productSvc := service.NewProductService(repos.Products, redisClient)
	profileSvc := service.NewProfileService(repos.Customers)
	cartSvc := service.NewCartService(store, repos.Products)
	checkoutSvc := service.NewCheckoutService(service.CheckoutDeps{
		Store:           store,
		Orders:          repos.Orders,
		Items:           repos.Items,
		Customers:       repos.Customers,
		Sessions:        sessions,
		Discounts:       discount.NewEngine(rules),
		Notifier:        requestor,
		Log:             log,
		SummaryReadOnce: cfg.Checkout.SummaryReadOnce,
	})
	orderSvc := service.NewOrderService(repos.Orders, repos.Items, repos.Shipping)
	articleSvc := service.NewArticleService(repos.Articles)

	if cfg.Admin.Email != "" {
		created, err := authSvc.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.Error("bootstrap admin", "error", err)
			os.Exit(1)
		}
		if created {
			log.Info("admin account created", "email", cfg.Admin.Email)
		}
	}

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	productH := handler.NewProductHandler(productSvc)
	profileH := handler.NewProfileHandler(profileSvc)
	cartH := handler.NewCartHandler(cartSvc, checkoutSvc)
	checkoutH := handler.NewCheckoutHandler(checkoutSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	articleH := handler.NewArticleHandler(articleSvc)
	healthH := handler.NewHealthHandler(
		handler.Dependency{Name: "postgres", Check: dbPool.Ping},
		handler.Dependency{Name: "redis", Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
		handler.Dependency{Name: "rabbitmq", Check: func(context.Context) error {
			if amqpConn.IsClosed() {
				return amqp.ErrClosed
			}
			return nil
		}},
	)

	// Worker
	var mailer notify.Mailer = notify.NewLogMailer(log)
	if cfg.Mail.Host != "" {
		smtpMailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			User:     cfg.Mail.User,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			Timeout:  cfg.Mail.Timeout,
		})
		if err != nil {
			log.Error("configure mail transport", "error", err)
			os.Exit(1)
		}
		mailer = smtpMailer
	}
	notificationWorker := worker.NewNotificationWorker(consumeCh, cfg.RabbitMQ.NotificationQueue, mailer, redisClient, log)

	// Router
	router := gin.Default()
	router.GET("/healthz", healthH.Healthz)
	router.GET("/readyz", healthH.Readyz)

	v1 := router.Group("/api/v1", middleware.Identify(cfg.JWT.Secret, identity.NewResolver(repos.Users, repos.Customers)))
	{
		auth := v1.Group("/auth")
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)
		auth.POST("/logout", middleware.RequireAuth(), authH.Logout)

		products := v1.Group("/products")
		products.GET("", productH.List)
		products.GET("/:id", productH.GetByID)

		admin := products.Group("", middleware.RequireAuth(), middleware.AdminOnly())
		admin.POST("", productH.Create)
		admin.PUT("/:id", productH.Update)
		admin.DELETE("/:id", productH.Delete)

		articles := v1.Group("/articles")
		articles.GET("", articleH.List)
		articles.POST("", middleware.RequireAuth(), middleware.AdminOnly(), articleH.Create)

		// Anonymous visitors get a read-only empty cart here.
		v1.GET("/cart", cartH.GetCart)
		v1.GET("/checkout", checkoutH.Begin)

		authed := v1.Group("", middleware.RequireAuth())
		authed.POST("/cart/update", cartH.UpdateItem)
		authed.POST("/cart/discount", cartH.ApplyDiscount)
		authed.POST("/checkout", checkoutH.Complete)
		authed.GET("/profile", profileH.Get)
		authed.PUT("/profile", profileH.Update)
		authed.GET("/orders", orderH.ListOrders)
		authed.GET("/orders/:id", orderH.GetOrder)
		authed.GET("/orders/:id/confirmation", checkoutH.Confirmation)
	}

	if err := notificationWorker.Start(ctx); err != nil {
		log.Error("start notification worker", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	notificationWorker.Stop()
	time.Sleep(500 * time.Millisecond)
	cancel()
	log.Info("server stopped")
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
