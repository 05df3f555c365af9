package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/logutils"
	"github.com/hellofresh/health-go/v5"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/mattn/go-sqlite3"
	"github.com/planetary-social/feedcache/internal/handlers"
	"github.com/planetary-social/feedcache/internal/ports"
	"github.com/planetary-social/feedcache/pkg/cache"
	"github.com/planetary-social/feedcache/pkg/cache/filestore"
	"github.com/planetary-social/feedcache/pkg/cache/memstore"
	"github.com/planetary-social/feedcache/pkg/cache/redistore"
	"github.com/planetary-social/feedcache/pkg/cache/sqlitestore"
	"github.com/planetary-social/feedcache/pkg/remote"
	"github.com/planetary-social/feedcache/pkg/rss"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/exp/slices"
)

type Config struct {
	FeedURL                   string `envconfig:"FEED_URL" required:"true"`
	FeedSource                string `envconfig:"FEED_SOURCE" default:"api"`
	ListenAddress             string `envconfig:"LISTEN_ADDRESS" default:":8080"`
	StoreBackend              string `envconfig:"STORE_BACKEND" default:"file"`
	CacheFilePath             string `envconfig:"CACHE_FILE_PATH" default:"db/feedcache.json"`
	DatabasePath              string `envconfig:"DATABASE_PATH" default:"db/feedcache.sqlite"`
	RedisAddress              string `envconfig:"REDIS_ADDRESS" default:"localhost:6379"`
	ValidationIntervalMinutes int    `envconfig:"VALIDATION_INTERVAL_MINUTES" default:"30"`
	Version                   string `envconfig:"VERSION" default:"unknown"`
}

var supportedBackends = []string{"file", "memory", "redis", "sqlite"}
var supportedSources = []string{"api", "rss"}

func ConfigureLogging() {
	filter := &logutils.LevelFilter{
		Levels:   []logutils.LogLevel{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"},
		MinLevel: logutils.LogLevel(os.Getenv("LOG_LEVEL")),
		Writer:   os.Stderr,
	}
	log.SetOutput(filter)
}

func CreateHealthCheck(version string) *health.Health {
	h, _ := health.New(health.WithComponent(health.Component{
		Name:    "feedcache",
		Version: version,
	}), health.WithChecks(health.Config{
		Name:      "self",
		Timeout:   time.Second * 5,
		SkipOnErr: false,
		Check: func(ctx context.Context) error {
			return nil
		},
	},
	))
	return h
}

func main() {
	ConfigureLogging()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("[FATAL] couldn't process envconfig: %v", err)
	}
	log.Printf("[INFO] Running VERSION %s:\n - FEED_URL=%s\n - FEED_SOURCE=%s\n - STORE_BACKEND=%s\n\n", cfg.Version, cfg.FeedURL, cfg.FeedSource, cfg.StoreBackend)

	store, closers, err := InitStore(cfg)
	if err != nil {
		log.Fatalf("[FATAL] failed to initialize the %q store: %v", cfg.StoreBackend, err)
	}
	defer func() {
		if err := closeAll(closers); err != nil {
			log.Printf("[ERROR] failure during shutdown: %v", err)
		}
	}()

	localLoader := cache.NewLoader(store, time.Now)
	remoteLoader, err := InitRemoteLoader(cfg)
	if err != nil {
		log.Fatalf("[FATAL] failed to initialize the feed source: %v", err)
	}
	healthCheck := CreateHealthCheck(cfg.Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timer := ports.NewValidateCacheTimer(localLoader, time.Duration(cfg.ValidationIntervalMinutes)*time.Minute)
	go timer.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/feed", func(w http.ResponseWriter, r *http.Request) {
		handlers.HandleGetFeed(w, r, localLoader)
	})
	mux.HandleFunc("/api/feed/refresh", func(w http.ResponseWriter, r *http.Request) {
		handlers.HandleRefreshFeed(w, r, remoteLoader, localLoader)
	})
	mux.HandleFunc("/healthz", healthCheck.HandlerFunc)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: cfg.ListenAddress, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[ERROR] failure to shut down the server: %v", err)
		}
	}()

	log.Printf("[INFO] listening on %s", cfg.ListenAddress)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("[FATAL] server terminated: %v", err)
	}
}

func InitRemoteLoader(cfg Config) (handlers.RemoteLoader, error) {
	if !slices.Contains(supportedSources, cfg.FeedSource) {
		return nil, fmt.Errorf("unsupported feed source %q (supported: %v)", cfg.FeedSource, supportedSources)
	}

	if cfg.FeedSource == "rss" {
		return rss.NewLoader(cfg.FeedURL), nil
	}
	return remote.NewLoader(remote.NewClient(), cfg.FeedURL), nil
}

func InitStore(cfg Config) (cache.Store, []func() error, error) {
	if !slices.Contains(supportedBackends, cfg.StoreBackend) {
		return nil, nil, fmt.Errorf("unsupported store backend %q (supported: %v)", cfg.StoreBackend, supportedBackends)
	}

	switch cfg.StoreBackend {
	case "file":
		if err := os.MkdirAll(path.Dir(cfg.CacheFilePath), 0750); err != nil {
			return nil, nil, err
		}
		store := filestore.New(cfg.CacheFilePath)
		return store, []func() error{store.Close}, nil

	case "memory":
		store, err := memstore.New()
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		return redistore.New(client), []func() error{client.Close}, nil

	default:
		if err := os.MkdirAll(path.Dir(cfg.DatabasePath), 0750); err != nil {
			return nil, nil, err
		}
		db, err := sql.Open("sqlite3", cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		store, err := sqlitestore.New(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, []func() error{db.Close}, nil
	}
}

func closeAll(closers []func() error) error {
	var result error
	for _, closer := range closers {
		if err := closer(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}
