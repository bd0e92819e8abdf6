package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/leadscore/internal/analytics"
	"github.com/ignite/leadscore/internal/api"
	"github.com/ignite/leadscore/internal/archive"
	"github.com/ignite/leadscore/internal/collector"
	"github.com/ignite/leadscore/internal/config"
	"github.com/ignite/leadscore/internal/pkg/logger"
	"github.com/ignite/leadscore/internal/scoring"
	"github.com/ignite/leadscore/internal/service"
	"github.com/ignite/leadscore/internal/worker"
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

func main() {
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	if cfg.Database.URL == "" {
		log.Fatal("database.url (or DATABASE_URL) is required")
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		cancelPing()
		log.Fatalf("pinging database: %v", err)
	}
	cancelPing()
	logger.Info("connected to database")

	var redisClient *redis.Client
	if cfg.Redis.Enabled && cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.URL})
		} else {
			redisClient = redis.NewClient(opts)
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unavailable, caching disabled", "error", err.Error())
			redisClient.Close()
			redisClient = nil
		}
		cancel()
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	store := scoring.NewStore(db)
	col := collector.New(db)
	engine := scoring.NewEngine()
	aggregator := analytics.NewAggregator(db, redisClient, cfg.Analytics.CacheTTL())
	scores := service.NewScores(store, col, engine, aggregator)

	var rescorer *worker.Rescorer
	if cfg.Rescorer.Enabled {
		rescorer = worker.NewRescorer(scores, store, db, redisClient,
			cfg.Rescorer.Interval(), cfg.Rescorer.Staleness(), cfg.Rescorer.BatchSize,
			cfg.Scoring.RetainScoresOnContactDelete)
		if err := rescorer.Start(); err != nil {
			log.Fatalf("starting rescorer: %v", err)
		}
		defer rescorer.Stop()
	}

	var snapshotArchiver *worker.SnapshotArchiver
	if cfg.Archive.Enabled && cfg.Archive.S3Bucket != "" {
		s3Archiver, err := archive.NewS3Archiver(context.Background(),
			cfg.Archive.S3Bucket, cfg.Archive.S3Region, cfg.Archive.GetAWSProfile())
		if err != nil {
			logger.Warn("S3 archiver disabled", "error", err.Error())
		} else {
			snapshotArchiver = worker.NewSnapshotArchiver(aggregator, s3Archiver)
			snapshotArchiver.Start()
			defer snapshotArchiver.Stop()
		}
	}

	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		log.Fatal(err)
	}

	server := api.NewServer(cfg.Server, scores, aggregator)
	addr := fmt.Sprintf("%s:%d", host, cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("lead scoring API listening", "addr", addr)
		errCh <- server.ListenAndServe(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("server error: %v", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err.Error())
	}
}
