package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/strivefit/engagement-engine/internal/api"
	"github.com/strivefit/engagement-engine/internal/archive"
	"github.com/strivefit/engagement-engine/internal/cache"
	"github.com/strivefit/engagement-engine/internal/config"
	"github.com/strivefit/engagement-engine/internal/domain"
	"github.com/strivefit/engagement-engine/internal/engagement"
	"github.com/strivefit/engagement-engine/internal/repository/postgres"
	"github.com/strivefit/engagement-engine/internal/revenue"
	"github.com/strivefit/engagement-engine/internal/service/insights"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func priceTable(prices map[string]float64) revenue.PriceTable {
	if len(prices) == 0 {
		return nil
	}
	table := make(revenue.PriceTable, len(prices))
	for tier, price := range prices {
		table[domain.SubscriptionTier(tier)] = price
	}
	return table
}

func main() {
	log.Println("StriveFit engagement analytics engine starting")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check failed: %v", err)
	}

	// Database
	if cfg.Database.URL == "" {
		log.Fatal("database.url is required (or set DATABASE_URL)")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		cancel()
		log.Fatalf("Database unreachable: %v", err)
	}
	cancel()
	log.Println("[db] connected")

	// Optional Redis view cache
	var viewCache insights.ViewCache
	if cfg.Redis.Enabled {
		rc := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rc.Ping(context.Background()).Err(); err != nil {
			log.Printf("[redis] unreachable, running without view cache: %v", err)
		} else {
			viewCache = cache.NewViews(rc, time.Duration(cfg.Engine.CacheTTLSeconds)*time.Second)
			log.Printf("[redis] view cache enabled (%s, ttl %ds)", cfg.Redis.Addr, cfg.Engine.CacheTTLSeconds)
		}
		defer rc.Close()
	}

	// Engine
	repo := postgres.NewInsightsRepo(db)
	calc := revenue.NewCalculator(priceTable(cfg.Engine.TierPrices))
	svc := insights.NewService(repo, calc, viewCache, insights.Options{
		LookbackDays: cfg.Engine.LookbackDays,
		CohortMonths: cfg.Engine.CohortMonths,
		TrendWindow: engagement.Window{
			Unit:  engagement.WindowUnit(cfg.Engine.TrendUnit),
			Count: cfg.Engine.TrendCount,
		},
		RevenueLookbackMonths: cfg.Engine.RevenueLookbackMonths,
		TopClients:            cfg.Engine.TopClients,
	})

	// Optional S3 snapshot archive
	var archiver insights.Archiver
	if cfg.Archive.Enabled {
		a, err := archive.NewS3Archive(context.Background(),
			cfg.Archive.S3Bucket, cfg.Archive.S3Prefix, cfg.Archive.Region, cfg.Archive.AWSProfile)
		if err != nil {
			log.Printf("[archive] disabled: %v", err)
		} else {
			archiver = a
			log.Printf("[archive] snapshots -> s3://%s/%s", cfg.Archive.S3Bucket, cfg.Archive.S3Prefix)
		}
	}

	// Scheduled recompute keeps the cache warm and feeds the archive.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recomputer *insights.Recomputer
	if cfg.Engine.RecomputeEnabled && (viewCache != nil || archiver != nil) {
		recomputer = insights.NewRecomputer(svc, archiver,
			time.Duration(cfg.Engine.RecomputeIntervalMinutes)*time.Minute)
		recomputer.Start(ctx)
	}

	// HTTP server
	handlers := api.NewHandlers(svc, cfg)
	router := api.SetupRoutes(handlers)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("[http] listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	if recomputer != nil {
		recomputer.Stop()
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
