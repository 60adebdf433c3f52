package main

import (
	"log"
	"os"
	"strconv"
	"time"

	httpctrl "storefront-service/internal/controllers/http"
	mdt "storefront-service/internal/infra/midtrans"
	mmysql "storefront-service/internal/infra/mysql"
	"storefront-service/internal/infra/rabbitmq"
	mysqlrepo "storefront-service/internal/repository/mysql"
	"storefront-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	db, err := mmysql.NewMySQLFromEnv()
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	store := mysqlrepo.NewStore(db)

	publisher, err := rabbitmq.NewPublisher(os.Getenv("RABBITMQ_URL"), "order.exchange", logger)
	if err != nil {
		logger.Fatal("rabbitmq connect", zap.Error(err))
	}
	defer publisher.Close()

	gateway := mdt.NewSnapClientFromEnv()

	orderService := services.NewOrderService(store, publisher, logger)
	if v := os.Getenv("SHIPPING_FLAT_RATE"); v != "" {
		rate, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			logger.Fatal("invalid SHIPPING_FLAT_RATE", zap.String("value", v))
		}
		orderService.SetShippingCost(rate)
	}

	cartService := services.NewCartService(store, logger)
	paymentService := services.NewPaymentService(store, gateway, publisher, logger)

	redisClient := redis.NewClient(&redis.Options{
		Addr:         os.Getenv("REDIS_HOST") + ":6379",
		DB:           0,
		PoolSize:     50,
		MinIdleConns: 10,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	handler := httpctrl.NewHandler(orderService, cartService, paymentService, redisClient, logger)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	handler.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("starting storefront service", zap.String("port", port))
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("server run", zap.Error(err))
	}
}
