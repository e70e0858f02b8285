package main // Entry point package

import (
    "log"

    "github.com/joho/godotenv" // loads .env files in development
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/larose/hotel-backoffice/internal/config"
    "github.com/larose/hotel-backoffice/internal/database"
    "github.com/larose/hotel-backoffice/internal/handler"
    "github.com/larose/hotel-backoffice/internal/repository"
    "github.com/larose/hotel-backoffice/internal/router"
    queuepublisher "github.com/larose/hotel-backoffice/internal/service"
    "github.com/larose/hotel-backoffice/internal/vnpay"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()

    cfg := config.Load()

    logger, err := newLogger(cfg.Env)
    if err != nil {
        log.Fatalf("logger init: %v", err)
    }
    defer func() { _ = logger.Sync() }()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        logger.Fatal("database connect failed", zap.Error(err))
    }
    defer func() { _ = db.Close() }()

    gateway, err := vnpay.New(config.LoadVNPay())
    if err != nil {
        logger.Fatal("vnpay config invalid", zap.Error(err))
    }

    // Redis is optional: without it rate limiting is disabled and the
    // callback reconciler relies on its conditional update alone.
    rdb := config.NewRedisClient()
    if rdb == nil {
        logger.Warn("redis unavailable, rate limiting and callback dedup degraded")
    }

    var publisher handler.EventPublisher
    if cfg.AMQPURL != "" {
        publisher = queuepublisher.NewAMQP()
    } else {
        logger.Warn("RABBITMQ_URL not set, lifecycle events disabled")
    }

    bookings := repository.NewBookingRepo(db)
    transactions := repository.NewTransactionRepo(db)
    rooms := repository.NewRoomRepo(db)
    users := repository.NewUserRepo(db)
    sequences := repository.NewSequenceRepo(db)
    items := repository.NewBookingServiceRepo(db)

    h := router.Handlers{
        Bookings:     handler.NewBookingHandler(bookings, rooms, users, sequences, cfg.HotelCode, publisher, logger),
        Transactions: handler.NewTransactionHandler(bookings, transactions, rooms, users, sequences, cfg.HotelCode, logger),
        Payments:     handler.NewPaymentHandler(bookings, transactions, gateway, rdb, publisher, logger),
        Services:     handler.NewBookingServiceHandler(bookings, items, logger),
    }

    e := echo.New()
    e.HideBanner = true
    e.Validator = handler.NewValidator()

    router.RegisterRoutes(e, h)
    router.RegisterAPI(e, h, cfg.JWTSecret, rdb)

    addr := ":" + cfg.Port
    logger.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
    if err := e.Start(addr); err != nil {
        logger.Fatal("server stopped", zap.Error(err))
    }
}

// newLogger picks the zap preset by environment: structured JSON in
// prod, human-readable output everywhere else.
func newLogger(env string) (*zap.Logger, error) {
    if env == "prod" || env == "production" {
        return zap.NewProduction()
    }
    return zap.NewDevelopment()
}
