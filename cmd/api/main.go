package main

import (
	"log"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/falub/kazadigate/internal/app"
	"github.com/falub/kazadigate/internal/config"
	"github.com/falub/kazadigate/internal/keys"
	"github.com/falub/kazadigate/internal/reveal"
	"github.com/falub/kazadigate/internal/storage"
	"github.com/falub/kazadigate/internal/transport/http/handler"
	gatewayhandler "github.com/falub/kazadigate/internal/transport/http/handler/gateway"
	"github.com/falub/kazadigate/internal/transport/http/handler/infra"
	keyshandler "github.com/falub/kazadigate/internal/transport/http/handler/keys"
	"github.com/falub/kazadigate/internal/transport/http/middleware/auth"
	"github.com/falub/kazadigate/internal/upstream"
	"github.com/joho/godotenv"
)

func main() {
	// Local .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	if err := config.EnsureConfigFile(); err != nil {
		log.Printf("warning: could not create config file: %v", err)
	}
	cfg := config.Load()

	logger := setupLogger()

	if err := config.EnsureDataDir(); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}

	store, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer store.Close()

	keyCache, err := ristretto.NewCache(&ristretto.Config[string, *auth.CachedKey]{
		NumCounters: 1e6,
		MaxCost:     10_000,
		BufferItems: 64,
	})
	if err != nil {
		log.Fatalf("failed to create key cache: %v", err)
	}

	reveals := reveal.NewStore(cfg.RevealTTL)
	defer reveals.Close()

	up := upstream.NewClient(cfg.UpstreamBaseURL)
	quota := keys.NewQuotaEnforcer(store, cfg.MonthlyQuota)
	issuer := keys.NewIssuer(store, up, reveals, quota, logger, cfg.TestKeyTTL)

	lifecycle := keys.NewLifecycle(store, reveals, logger, func(keyHash string) {
		keyCache.Del(auth.CacheKey(keyHash))
	})
	lifecycle.StartSweeper(cfg.SweepInterval)
	defer lifecycle.StopSweeper()

	repo := handler.NewRepo(
		keyshandler.New(issuer, lifecycle, store, reveals, logger),
		gatewayhandler.New(up, store, logger),
		infra.New(time.Now()),
	)

	router := app.NewRouter(repo, &app.RouterOptions{
		Logger:      logger,
		Storage:     store,
		KeyCache:    keyCache,
		FrontOrigin: cfg.FrontOrigin,
	})

	printStartupBanner(cfg)

	srv := app.NewServer(cfg, router)
	if err := srv.Start(); err != nil {
		log.Fatal(err)
	}
}
