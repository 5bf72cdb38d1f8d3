package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightgate/api"
	"github.com/Domenick1991/flightgate/config"
	"github.com/Domenick1991/flightgate/internal/bootstrap"
	"github.com/Domenick1991/flightgate/internal/cache"
	"github.com/Domenick1991/flightgate/internal/kafka"
	"github.com/Domenick1991/flightgate/internal/metrics"
	"github.com/Domenick1991/flightgate/internal/repository"
	"github.com/Domenick1991/flightgate/internal/server"
	"github.com/Domenick1991/flightgate/internal/service/accounts"
	"github.com/Domenick1991/flightgate/internal/service/flights"
	"github.com/Domenick1991/flightgate/internal/service/inventory"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := repository.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}
	if err := repository.SeedAdmin(ctx, pool, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	redisCache := cache.NewRedisCache(cfg.Redis)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	userRepo := repository.NewUserRepository(pool)
	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	accountService := accounts.NewAccountService(userRepo, cfg.Server.MaxResultRows)
	flightService := flights.NewFlightService(flightRepo, redisCache, cfg.Server.MaxResultRows)
	inventoryService := inventory.NewInventoryService(
		bookingRepo,
		flightRepo,
		producer,
		cfg.Kafka.BookingEventsTopic,
		cfg.Server.MaxResultRows,
		inventory.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	m := metrics.NewMetrics()
	router := server.NewRouter()
	server.NewHandlers(accountService, flightService, inventoryService, m).Register(router)
	wireSrv := server.New(cfg.Server, router, m)

	ops := api.NewOpsHandler(pool, redisCache, wireSrv.Registry())

	log.Printf("listening on %s", cfg.Server.Address)
	if err := bootstrap.Run(ctx, cfg, wireSrv, ops); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
