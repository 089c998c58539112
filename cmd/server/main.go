package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Simplici0/supportquote/internal/config"
	"github.com/Simplici0/supportquote/internal/db"
	"github.com/Simplici0/supportquote/internal/logger"
	"github.com/Simplici0/supportquote/internal/migrations"
	"github.com/Simplici0/supportquote/internal/pricing"
	"github.com/Simplici0/supportquote/internal/refdata"
	"github.com/Simplici0/supportquote/internal/seed"
	"github.com/Simplici0/supportquote/internal/session"
)

const (
	redisConnectTimeout = time.Minute
	sessionSweepEvery   = 10 * time.Minute
	shutdownTimeout     = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zapLogger.Sync()

	for _, w := range cfg.Warnings() {
		zapLogger.Warn("configuration warning", zap.String("detail", w))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		zapLogger.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	store, err := loadReferenceData(ctx, database, cfg.RefDataPath, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to load reference data", zap.Error(err))
	}

	sessions, closeSessions, err := openSessionStore(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to open session store", zap.Error(err))
	}
	defer closeSessions()

	secret := cfg.SessionSecret
	if secret == "" {
		if secret, err = randomSecret(); err != nil {
			zapLogger.Fatal("failed to generate session secret", zap.Error(err))
		}
	}

	calc := pricing.NewCalculator(store, pricing.Options{
		DurationPolicy:     pricing.DurationPolicy(cfg.DurationPolicy),
		LaborFallbackToAll: cfg.LaborFallbackToAll,
	}, zapLogger)

	srv := newServer(calc, sessions, newCookieSigner(secret, cfg.SessionTTL, !cfg.IsDev()), pricing.Defaults{
		Country:   cfg.DefaultCountry,
		RiskLevel: cfg.DefaultRisk,
		Margin:    cfg.DefaultMargin,
		Mode:      pricing.ModeBase,
	}, zapLogger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	zapLogger.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
	zapLogger.Info("server shutdown gracefully")
}

// loadReferenceData migrates the schema, seeds it from the YAML dataset at
// path (or the built-in one) and reads the tables back into a Store.
func loadReferenceData(ctx context.Context, database *sql.DB, path string, zapLogger *zap.Logger) (*refdata.Store, error) {
	if err := migrations.Up(database); err != nil {
		return nil, err
	}

	var ds refdata.Dataset
	var err error
	if path != "" {
		ds, err = refdata.LoadFile(path)
	} else {
		ds, err = refdata.Defaults()
	}
	if err != nil {
		return nil, err
	}

	stats, err := seed.Run(database, ds)
	if err != nil {
		return nil, fmt.Errorf("seed reference data: %w", err)
	}
	zapLogger.Info("reference data seeded",
		zap.Int("inserts", stats.Inserts),
		zap.Int("updates", stats.Updates),
		zap.String("source", sourceName(path)))

	loaded, err := refdata.Load(ctx, database)
	if err != nil {
		return nil, err
	}
	if err := loaded.Validate(); err != nil {
		return nil, fmt.Errorf("stored reference data: %w", err)
	}
	return refdata.NewStore(loaded), nil
}

func sourceName(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}

// openSessionStore returns a Redis-backed store when REDIS_ADDR is set and
// an in-process one otherwise.
func openSessionStore(ctx context.Context, cfg config.Config, zapLogger *zap.Logger) (session.Store, func(), error) {
	if cfg.RedisAddr == "" {
		mem := session.NewMemoryStore(cfg.SessionTTL)
		go mem.RunSweeper(ctx, sessionSweepEvery)
		zapLogger.Info("using in-memory session store", zap.Duration("ttl", cfg.SessionTTL))
		return mem, func() {}, nil
	}

	client, err := session.ConnectRedis(ctx, &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, redisConnectTimeout, zapLogger)
	if err != nil {
		return nil, nil, err
	}
	zapLogger.Info("using redis session store", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.SessionTTL))
	return session.NewRedisStore(client, cfg.SessionTTL), func() { _ = client.Close() }, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
