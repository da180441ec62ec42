package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexmentor/mentor-gateway/internal/config"
	"github.com/alexmentor/mentor-gateway/internal/quota"
	"github.com/alexmentor/mentor-gateway/internal/repository"
	"github.com/alexmentor/mentor-gateway/internal/routing"
	"github.com/alexmentor/mentor-gateway/internal/server"
	"github.com/alexmentor/mentor-gateway/internal/storage"
	"github.com/joho/godotenv"
)

func main() {
	// Load env if it exists
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var (
		store    quota.Store
		postgres *storage.Postgres
		redis    *storage.RedisClient
	)

	switch cfg.Quota.Backend {
	case "postgres":
		postgres, err = storage.NewPostgres(cfg.Postgres.DSN)
		if err != nil {
			log.Fatalf("Failed to connect to postgres: %v", err)
		}
		defer postgres.Close()

		if err := postgres.AutoMigrate(); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}

		store = quota.NewPostgresStore(repository.NewQuotaRepository(postgres))
		log.Println("Quota ledger backed by postgres")

	case "redis":
		redis, err = storage.NewRedis(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redis.Close()

		store = quota.NewRedisStore(redis, cfg.Quota.Window)
		log.Println("Quota ledger backed by redis")

	default:
		store = quota.NewMemoryStore()
		log.Println("Quota ledger backed by process memory (dev mode)")
	}

	ledger := quota.NewLedger(store, quota.Config{
		Window:       cfg.Quota.Window,
		MaxRequests:  cfg.Quota.MaxRequests,
		StoreTimeout: cfg.Quota.StoreTimeout,
		Exempt:       cfg.Quota.ExemptActions,
	})
	defer ledger.Close()

	table, err := routing.NewTable(cfg.Upstream.BaseURL, cfg.Upstream.Routes)
	if err != nil {
		log.Fatalf("Failed to build route table: %v", err)
	}

	srv := server.New(cfg, ledger, table, postgres, redis)

	go func() {
		addr := ":" + cfg.Server.Port
		if err := srv.Run(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
