// Package services содержит бизнес-логику административных операций
// над пользователями: листинг, смена ролей, отключение и удаление.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/secure-notes/internal/models"
	"github.com/magabrotheeeer/secure-notes/internal/storage/repository"
)

// Ошибки административных операций.
var (
	// ErrNotFound — пользователь не найден.
	ErrNotFound = errors.New("user not found")
	// ErrEmptyRoles — попытка назначить пустой набор ролей.
	ErrEmptyRoles = errors.New("role set must not be empty")
	// ErrUnknownRole — в наборе присутствует неизвестная роль.
	ErrUnknownRole = errors.New("unknown role")
	// ErrLastAdmin — операция оставила бы систему без единого
	// активного администратора. Запрещено.
	ErrLastAdmin = errors.New("cannot remove the last admin")
)

// UserRepository определяет методы хранилища, нужные административному сервису.
type UserRepository interface {
	// ListUsers возвращает всех пользователей с пагинацией.
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	// GetUserByUID возвращает пользователя по UID.
	GetUserByUID(ctx context.Context, userUID string) (*models.User, error)
	// UpdateUserRoles заменяет набор ролей пользователя.
	UpdateUserRoles(ctx context.Context, userUID string, roles []string) error
	// SetUserEnabled включает или отключает учётную запись.
	SetUserEnabled(ctx context.Context, userUID string, enabled bool) error
	// DeleteUser физически удаляет пользователя.
	DeleteUser(ctx context.Context, userUID string) error
	// CountEnabledAdmins возвращает количество активных администраторов.
	CountEnabledAdmins(ctx context.Context) (int, error)
}

// AdminService реализует административные операции.
// Доступ к ним закрыт middleware на уровне маршрутов: сюда попадают
// только запросы принципалов с ролью admin.
type AdminService struct {
	users UserRepository
	log   *slog.Logger
}

// NewAdminService создает новый экземпляр AdminService.
func NewAdminService(users UserRepository, log *slog.Logger) *AdminService {
	return &AdminService{
		users: users,
		log:   log,
	}
}

// ListUsers возвращает список всех пользователей.
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.users.ListUsers(ctx, limit, offset)
}

// GetUser возвращает пользователя по UID.
func (s *AdminService) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	user, err := s.users.GetUserByUID(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateRoles заменяет набор ролей пользователя.
//
// Пустой набор и неизвестные роли отклоняются. Снятие роли admin
// с последнего активного администратора запрещено: система не должна
// остаться без административного доступа.
func (s *AdminService) UpdateRoles(ctx context.Context, userUID string, roles []string) (*models.User, error) {
	if len(roles) == 0 {
		return nil, ErrEmptyRoles
	}
	for _, role := range roles {
		if !models.ValidRole(role) {
			return nil, ErrUnknownRole
		}
	}

	user, err := s.users.GetUserByUID(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	losesAdmin := user.Enabled && user.IsAdmin() && !containsAdmin(roles)
	if losesAdmin {
		count, err := s.users.CountEnabledAdmins(ctx)
		if err != nil {
			return nil, err
		}
		if count <= 1 {
			return nil, ErrLastAdmin
		}
	}

	if err := s.users.UpdateUserRoles(ctx, userUID, roles); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.log.Info("updated user roles",
		slog.String("user_uid", userUID), slog.Any("roles", roles))

	user.Roles = roles
	return user, nil
}

// RemoveUser отключает учётную запись пользователя; уже отключённую —
// удаляет физически. Отключение последнего активного администратора запрещено.
func (s *AdminService) RemoveUser(ctx context.Context, userUID string) error {
	user, err := s.users.GetUserByUID(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if user.Enabled && user.IsAdmin() {
		count, err := s.users.CountEnabledAdmins(ctx)
		if err != nil {
			return err
		}
		if count <= 1 {
			return ErrLastAdmin
		}
	}

	if user.Enabled {
		if err := s.users.SetUserEnabled(ctx, userUID, false); err != nil {
			return err
		}
		s.log.Info("disabled user", slog.String("user_uid", userUID))
		return nil
	}

	if err := s.users.DeleteUser(ctx, userUID); err != nil {
		return err
	}
	s.log.Info("deleted user", slog.String("user_uid", userUID))
	return nil
}

func containsAdmin(roles []string) bool {
	for _, role := range roles {
		if role == models.RoleAdmin {
			return true
		}
	}
	return false
}
