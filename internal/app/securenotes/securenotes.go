package securenotes

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/secure-notes/internal/cache"
	"github.com/magabrotheeeer/secure-notes/internal/config"
	"github.com/magabrotheeeer/secure-notes/internal/lib/jwt"
	"github.com/magabrotheeeer/secure-notes/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/migrations"
	adminservice "github.com/magabrotheeeer/secure-notes/internal/services/admin"
	auditservice "github.com/magabrotheeeer/secure-notes/internal/services/audit"
	authservice "github.com/magabrotheeeer/secure-notes/internal/services/auth"
	fileservice "github.com/magabrotheeeer/secure-notes/internal/services/file"
	noteservice "github.com/magabrotheeeer/secure-notes/internal/services/note"
	userservice "github.com/magabrotheeeer/secure-notes/internal/services/user"
	"github.com/magabrotheeeer/secure-notes/internal/storage/repository"

	"github.com/streadway/amqp"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	rabbit *amqp.Connection
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	// Очередь аудита не обязательна: без брокера события пишутся только в базу.
	var (
		rabbitConn   *amqp.Connection
		auditChannel *amqp.Channel
	)
	if cfg.RabbitURL != "" {
		rabbitConn, err = rabbitmq.Connect(cfg.RabbitURL, 5, 3*time.Second)
		if err != nil {
			logger.Warn("rabbitmq unavailable, audit events go to database only", sl.Err(err))
		} else {
			auditChannel, err = rabbitmq.SetupChannel(rabbitConn)
			if err != nil {
				logger.Warn("failed to open rabbitmq channel", sl.Err(err))
			}
		}
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	auditService := auditservice.NewAuditService(db, auditChannel, logger)
	authService := authservice.NewAuthService(db, jwtMaker, cacheRedis, cfg.BcryptCost)
	noteService := noteservice.NewNoteService(db, cacheRedis, logger)
	userService := userservice.NewUserService(db)
	adminService := adminservice.NewAdminService(db, logger)
	fileService, err := fileservice.NewFileService(db, cfg.UploadDir, logger)
	if err != nil {
		return nil, err
	}

	if err := seedAdmin(ctx, cfg, db, logger); err != nil {
		return nil, err
	}

	router := chi.NewRouter()

	RegisterRoutes(router, logger, jwtMaker, cacheRedis, &Services{
		Auth:  authService,
		Note:  noteService,
		User:  userService,
		Admin: adminService,
		File:  fileService,
		Audit: auditService,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		rabbit: rabbitConn,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.rabbit != nil {
			_ = a.rabbit.Close()
		}
		_ = a.db.DB.Close()
		return err
	}
}
