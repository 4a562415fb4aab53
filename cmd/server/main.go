package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"barrabusiness/internal/app"
	"barrabusiness/internal/config"
	"barrabusiness/internal/notify"
	"barrabusiness/internal/server"
	"barrabusiness/internal/store"
	"barrabusiness/internal/util"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	dataStore, err := newStore(cfg)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	notifier, closeNotifier, err := newNotifier(cfg)
	if err != nil {
		log.Fatalf("failed to init notifier: %v", err)
	}
	defer closeNotifier()

	appCore, err := app.New(app.Config{
		Store:       dataStore,
		Notifier:    notifier,
		RegionMatch: app.RegionPolicy(cfg.RegionMatch),
		Admin: app.AdminIdentity{
			Name:     cfg.AdminName,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
		},
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer, err := server.New(server.Config{App: appCore})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "err", err)
		}
	}()

	slog.Info("server listening", "addr", addr, "store", cfg.StoreBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}

func newStore(cfg config.FileConfig) (store.Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "file":
		return store.NewFileStore(cfg.DataFile)
	case "redis":
		return store.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.StoreKey)
	case "postgres":
		return store.NewGormStore(cfg.DatabaseURL, cfg.StoreKey)
	}
	// Unreachable after config validation.
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func newNotifier(cfg config.FileConfig) (*notify.Notifier, func(), error) {
	var broadcaster notify.Broadcaster
	closeFn := func() {}
	if cfg.RabbitURL != "" {
		rb, err := notify.NewRabbitBroadcaster(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			return nil, nil, err
		}
		broadcaster = rb
		closeFn = func() { _ = rb.Close() }
	}
	var flags notify.FlagStore
	if cfg.RedisAddr != "" {
		rf, err := notify.NewRedisFlags(cfg.RedisAddr, cfg.RedisPassword, cfg.StoreKey)
		if err != nil {
			return nil, nil, err
		}
		flags = rf
	}
	return notify.New(broadcaster, flags), closeFn, nil
}
