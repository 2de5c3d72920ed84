package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"producthub/internal/cache"
	httpctl "producthub/internal/controllers/http"
	"producthub/internal/infra"
	mmysql "producthub/internal/infra/mysql"
	"producthub/internal/infra/rabbitmq"
	mysqlrepo "producthub/internal/repository/mysql"
	"producthub/internal/services"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	db, err := mmysql.NewMySQLFromEnv()
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	orderRepo := mysqlrepo.NewOrderRepository(db)
	cartRepo := mysqlrepo.NewCartRepository(db)
	productRepo := mysqlrepo.NewProductRepository(db)

	var redisClient *redis.Client
	if host := os.Getenv("REDIS_HOST"); host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         host + ":6379",
			DB:           0,
			PoolSize:     100,
			MinIdleConns: 10,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
	}
	productCache := cache.New(redisClient, cache.DefaultTTL)

	publisher, err := rabbitmq.NewPublisher(os.Getenv("RABBITMQ_URL"), "order.exchange")
	if err != nil {
		log.Fatalf("failed to init publisher: %v", err)
	}
	defer publisher.Close()

	paymentClient := infra.NewPaymentClient(
		os.Getenv("PAYMENT_PROVIDER_URL"),
		os.Getenv("PAYMENT_SECRET_KEY"),
		5*time.Second,
	)

	orderSvc := services.NewOrderService(orderRepo, cartRepo, productRepo, productCache, paymentClient, publisher)
	cartSvc := services.NewCartService(cartRepo, productRepo, productCache)
	productSvc := services.NewProductService(productRepo, productCache)

	go func() {
		time.Sleep(5 * time.Second)
		if err := productCache.Warmup(context.Background(), []uint64{1, 2}, productRepo.FindByID); err != nil {
			log.WithError(err).Warn("cache warmup failed")
		}
	}()

	handler := httpctl.NewHandler(orderSvc, cartSvc, productSvc, os.Getenv("PAYMENT_WEBHOOK_SECRET"))

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	handler.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.WithField("port", port).Info("starting producthub server")
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server run: %v", err)
	}
}
