package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/emajohn/checkout/config"
	"github.com/emajohn/checkout/internal/events"
	handler "github.com/emajohn/checkout/internal/handler/http"
	kafkax "github.com/emajohn/checkout/internal/kafka"
	"github.com/emajohn/checkout/internal/logger"
	"github.com/emajohn/checkout/internal/middleware"
	"github.com/emajohn/checkout/internal/redisx"
	"github.com/emajohn/checkout/internal/repository"
	"github.com/emajohn/checkout/internal/repository/postgres"
	"github.com/emajohn/checkout/internal/service"
	"github.com/emajohn/checkout/internal/stripe"
	"github.com/emajohn/checkout/internal/worker"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {

	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Log.Sync()

	// create context cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// initialize database
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Log.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// migrate database
	if err := db.Migrate(); err != nil {
		logger.Log.Fatal("Error migrating database", zap.Error(err))
	}

	// optional redis cache
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redisx.New(cfg.RedisAddr)
		defer rdb.Close()
	}

	// optional kafka producer
	var producer *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderCompleted, 256)
		producer.Start(ctx)
		defer producer.WaitClosed()
	}

	gateway := stripe.NewClient(cfg.StripeAPIKey, cfg.StripeAPIAddr)

	// dependency injection
	// checkout
	orderRepo := repository.NewOrderRepository(db)
	checkoutService := service.NewCheckoutService(orderRepo, gateway, cfg.SuccessURL, cfg.CancelURL)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService)

	// reconciliation
	jobRepo := repository.NewJobRepository(db)
	var publisher service.EventPublisher
	if producer != nil {
		publisher = producer
	}
	reconcileService := service.NewReconcileService(orderRepo, jobRepo, gateway, publisher)

	// webhook
	webhookHandler := handler.NewWebhookHandler(cfg.StripeWebhookSecret)
	webhookHandler.On(stripe.EventCheckoutSessionCompleted, func(ctx context.Context, event stripe.Event) error {
		var session stripe.CheckoutSession
		if err := event.UnmarshalObject(&session); err != nil {
			return err
		}
		return reconcileService.EnqueueCompletedSession(ctx, session)
	})

	// catalog
	productRepo := repository.NewProductRepository(db)
	productService := service.NewProductService(productRepo, rdb)
	productHandler := handler.NewProductHandler(productService)

	router := chi.NewRouter()

	router.Use(middleware.Logging(logger.Log))

	router.Post("/create-payment-intent", checkoutHandler.CreatePaymentIntent())
	router.Post("/webhook", webhookHandler.HandleNotification())
	router.Get("/products", productHandler.ListProducts())
	router.Post("/products", productHandler.AddProduct())
	router.Get("/totalProducts", productHandler.TotalProducts())
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("checkout service is running"))
	})

	// run reconciliation worker
	reconciler := worker.NewReconciler(reconcileService)
	go reconciler.Run(ctx)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	go func() {
		logger.Log.Info("Running server", zap.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Error starting server", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Error shutting down server", zap.Error(err))
	}

	logger.Log.Info("Server stopped")
}
