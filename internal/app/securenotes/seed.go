package securenotes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/secure-notes/internal/config"
	"github.com/magabrotheeeer/secure-notes/internal/lib/password"
	"github.com/magabrotheeeer/secure-notes/internal/models"
	"github.com/magabrotheeeer/secure-notes/internal/storage/repository"
)

// seedAdmin создает первого администратора при запуске на пустой базе.
// На непустой базе и без заданных учётных данных ничего не делает.
func seedAdmin(ctx context.Context, cfg *config.Config, db *repository.Storage, log *slog.Logger) error {
	const op = "app.seedAdmin"

	count, err := db.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count > 0 {
		return nil
	}
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		log.Warn("database is empty and no seed admin configured, skipping")
		return nil
	}

	hash, err := password.GetHash(cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	uid, err := db.RegisterUser(ctx, models.User{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Roles:        []string{models.RoleUser, models.RoleAdmin},
		Enabled:      true,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("seed admin created",
		slog.String("uid", uid),
		slog.String("username", cfg.AdminUsername),
	)
	return nil
}
