package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/qrfood/eatery-backend/internal/config"
	"github.com/qrfood/eatery-backend/internal/database"
	"github.com/qrfood/eatery-backend/internal/handler"
	"github.com/qrfood/eatery-backend/internal/job"
	"github.com/qrfood/eatery-backend/internal/middleware"
	"github.com/qrfood/eatery-backend/internal/queue"
	"github.com/qrfood/eatery-backend/internal/repository"
	"github.com/qrfood/eatery-backend/internal/router"
	queue_publisher "github.com/qrfood/eatery-backend/internal/service"
)

func main() {
	// .env is optional; real deployments inject the environment directly
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	// repositories
	users := repository.NewUserRepo(db)
	access := repository.NewUserAccessRepo(db)
	refreshTokens := repository.NewTokenRepo(db)
	authTokens := repository.NewAuthTokenRepo(db)
	eateries := repository.NewEateryRepo(db)
	categories := repository.NewCategoryRepo(db)
	dishes := repository.NewDishRepo(db)
	tables := repository.NewTableRepo(db)
	orders := repository.NewOrderRepo(db)
	orderItems := repository.NewOrderItemRepo(db)
	nudgeLog := repository.NewNotificationLogRepo(db)

	// handlers
	auth := handler.NewAuthHandler(cfg, users, access, refreshTokens)
	handlers := router.Handlers{
		Auth:       auth,
		Hybrid:     handler.NewHybridAuthHandler(auth, authTokens, queue_publisher.PublishMail),
		Categories: handler.NewCategoryHandler(categories),
		Dishes:     handler.NewDishHandler(dishes),
		Tables:     handler.NewTableHandler(tables),
		Orders: handler.NewOrderHandler(orders, tables, handler.OrderPublisher{
			Placed: queue_publisher.PublishOrderPlaced,
			Status: queue_publisher.PublishOrderStatus,
		}),
		OrderItems: handler.NewOrderItemHandler(orderItems, dishes),
		Staff:      handler.NewStaffHandler(access, users),
		PublicMenu: handler.NewPublicMenuHandler(eateries, categories, dishes),
	}

	// background workers
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order-consumer stopped: %v", err)
		}
	}()
	nudger := &job.OnboardingNudger{
		Eateries: eateries,
		Log:      nudgeLog,
		Publish:  queue_publisher.PublishOnboardingNudge,
		Interval: time.Hour,
		MaxAge:   72 * time.Hour,
	}
	go nudger.Run(context.Background())

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handlers, cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterEatery(e, handlers, router.Repos{
		Categories: categories,
		Dishes:     dishes,
		Tables:     tables,
		Orders:     orders,
		OrderItems: orderItems,
		Access:     access,
	}, cfg.JWTSecret)
	router.RegisterPublic(e, handlers,
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
