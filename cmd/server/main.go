package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bundle-service/config"
	"bundle-service/internal/api"
	"bundle-service/internal/broker"
	"bundle-service/internal/bundle"
	"bundle-service/internal/cartstore"
	"bundle-service/internal/catalog"
	"bundle-service/internal/models"
	"bundle-service/internal/redisclient"
	"bundle-service/internal/store"
	"bundle-service/internal/util"
	"bundle-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting bundle service")

	tp, err := util.InitTracer("bundle-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicBundle)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	rules := models.RuleSet{
		MinItems:   cfg.Bundle.MinItems,
		MinTotal:   cfg.Bundle.MinTotal,
		RequireBox: cfg.Bundle.RequireBox,
	}

	currency := models.Currency{
		Code:              cfg.Currency.Code,
		Symbol:            cfg.Currency.Symbol,
		Decimals:          cfg.Currency.Decimals,
		DecimalSeparator:  cfg.Currency.DecimalSeparator,
		ThousandSeparator: cfg.Currency.ThousandSeparator,
		Format:            cfg.Currency.Format,
	}

	provider := catalog.NewStoreProvider(db)
	payloadBuilder := catalog.NewPayloadBuilder(db, redisClient, currency, rules, cfg.Bundle.Sections, cfg.Bundle.CatalogTTL)
	cart := cartstore.NewRedisCart(redisClient, cfg.Bundle.SessionTTL)
	bundleService := bundle.NewService(provider, cart, rules, currency, cfg.Bundle)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	bundleConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicBundle, cfg.Kafka.ConsumerGroup)
	analyticsWorker := worker.NewAnalyticsWorker(bundleConsumer, db, redisClient)
	go func() {
		if err := analyticsWorker.Start(workerCtx); err != nil {
			log.Printf("Analytics worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(bundleService, payloadBuilder, redisClient, eventPublisher, cfg.Bundle.SessionTTL)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	analyticsWorker.Stop()

	log.Println("Server exited")
}
