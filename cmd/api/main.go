// @title                       Account Service API
// @version                     1.0
// @description                 User accounts: signup, login, logout, subscription tier and avatar.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/account-service/internal/api"
	"github.com/99minutos/account-service/internal/api/handler"
	"github.com/99minutos/account-service/internal/core/ports"
	"github.com/99minutos/account-service/internal/core/service"
	"github.com/99minutos/account-service/internal/infrastructure/config"
	mongodb "github.com/99minutos/account-service/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/account-service/internal/infrastructure/db/redis"
	"github.com/99minutos/account-service/internal/infrastructure/queue"
	"github.com/99minutos/account-service/internal/infrastructure/security"
	"github.com/99minutos/account-service/internal/infrastructure/storage"
	"github.com/99minutos/account-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{})
		l := logger.Get()
		l.Fatal().Err(err).Msg("load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "account-service",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	repo := mongodb.NewAccountRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		return err
	}

	checks := []handler.DependencyCheck{handler.MongoCheck(db)}

	var revocations ports.TokenRevocations
	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Warn().Err(err).Msg("revocation cache unavailable, relying on the account store only")
	} else {
		defer rdb.Close()
		revocations = redisdb.NewRevocationCache(rdb)
		checks = append(checks, handler.RedisCheck(rdb))
	}

	backend, avatarPrefix, avatarDir, err := avatarBackend(ctx, cfg)
	if err != nil {
		return err
	}
	avatars := storage.NewAvatarStore(backend, cfg.Avatar.Size)

	cleanup := queue.NewDispatcher(cfg.Avatar.CleanupWorkers, avatars, log)
	cleanup.Start(ctx)

	authService := service.NewAuthService(
		repo,
		security.NewBcryptHasher(cfg.Auth.BcryptCost),
		security.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		revocations,
		cfg.Auth.TokenTTL,
		log,
	)
	accountService := service.NewAccountService(repo, avatars, cleanup, log)

	router := api.NewRouter(api.Deps{
		Auth:          authService,
		Authenticator: authService,
		Accounts:      accountService,
		Health:        handler.NewHealthHandler(checks...),
		AvatarPrefix:  avatarPrefix,
		AvatarDir:     avatarDir,
		Log:           log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// avatarBackend selects S3 when a bucket is configured and the local directory
// otherwise. The prefix and dir are only set for the local backend.
func avatarBackend(ctx context.Context, cfg *config.Config) (storage.Backend, string, string, error) {
	if cfg.S3.Bucket != "" {
		b, err := storage.NewS3Backend(ctx, storage.S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			PublicURL: cfg.S3.PublicURL,
		})
		return b, "", "", err
	}

	b, err := storage.NewLocalBackend(cfg.Avatar.Dir, cfg.Avatar.BaseURL)
	if err != nil {
		return nil, "", "", err
	}

	prefix := cfg.Avatar.BaseURL
	if u, err := url.Parse(cfg.Avatar.BaseURL); err == nil && u.IsAbs() {
		// Served by someone else.
		prefix = ""
	}
	return b, prefix, b.Dir(), nil
}
