package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/insert-planner/internal/api"
	"github.com/ignite/insert-planner/internal/artfiles"
	"github.com/ignite/insert-planner/internal/cache"
	"github.com/ignite/insert-planner/internal/catalog"
	"github.com/ignite/insert-planner/internal/classifier"
	"github.com/ignite/insert-planner/internal/config"
	"github.com/ignite/insert-planner/internal/repository/postgres"
	"github.com/ignite/insert-planner/internal/service/campaign"
)

func main() {
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Postgres holds the campaign records; the server cannot run without it.
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(3)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		pingCancel()
		log.Fatalf("Database ping failed: %v", err)
	}
	pingCancel()
	log.Println("Database connected")

	// Redis backs the wizard cache. The wizard degrades to uncached reads
	// when it is unreachable, so a failed ping only logs a warning.
	var store *cache.Store
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, pingCancel = context.WithTimeout(ctx, 3*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("Warning: Redis connection failed (%s): %v — wizard cache disabled", cfg.Redis.Addr, err)
		rdb.Close()
		rdb = nil
	} else {
		store = cache.New(rdb, cfg.Redis.TTL())
		log.Printf("Redis connected: %s (cache TTL %s)", cfg.Redis.Addr, cfg.Redis.TTL())
	}
	pingCancel()

	catalogClient := catalog.NewClient(catalog.Config{
		BaseURL: cfg.Catalog.BaseURL,
		APIKey:  cfg.Catalog.APIKey,
	})
	classifierClient := classifier.NewClient(classifier.Config{
		BaseURL: cfg.Classifier.BaseURL,
		APIKey:  cfg.Classifier.APIKey,
	})

	// Art-file storage is optional; without a bucket the art and agreement
	// upload endpoints respond 503 but the rest of the wizard works.
	var art *artfiles.Store
	if cfg.ArtFiles.Bucket != "" {
		art, err = artfiles.NewStore(ctx, artfiles.Config{
			Bucket:     cfg.ArtFiles.Bucket,
			Region:     cfg.ArtFiles.Region,
			AWSProfile: cfg.ArtFiles.AWSProfile,
		})
		if err != nil {
			log.Printf("Warning: art-file store init failed: %v — art endpoints disabled", err)
			art = nil
		} else {
			log.Printf("Art-file store initialized: s3://%s", cfg.ArtFiles.Bucket)
		}
	} else {
		log.Println("Art-file store not configured (missing bucket)")
	}

	var invalidator campaign.Invalidator
	if store != nil {
		invalidator = store
	}
	campaigns := campaign.NewService(postgres.NewCampaignRepo(db), invalidator)
	server := api.NewServer(campaigns, catalogClient, classifierClient, store, art)

	if path := cfg.Agreement.TemplatePath; path != "" {
		source, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to read agreement template %s: %v", path, err)
		}
		server.SetAgreementTemplate(string(source))
		log.Printf("Agreement template loaded from %s", path)
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Router(cfg.Server.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	if rdb != nil {
		rdb.Close()
	}
	db.Close()
	log.Println("Server stopped")
}
