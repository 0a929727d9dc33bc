// Package services содержит бизнес-логику профиля пользователя:
// просмотр и изменение собственных данных учётной записи.
package services

import (
	"context"
	"errors"

	"github.com/magabrotheeeer/secure-notes/internal/models"
	"github.com/magabrotheeeer/secure-notes/internal/storage/repository"
)

// Ошибки профиля.
var (
	// ErrNotFound — пользователь не найден.
	ErrNotFound = errors.New("user not found")
	// ErrUsernameTaken — новое имя пользователя уже занято.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailTaken — новый email уже зарегистрирован.
	ErrEmailTaken = errors.New("email already registered")
)

// ProfileUpdate описывает частичное обновление профиля.
// nil-поле означает "не менять".
type ProfileUpdate struct {
	Username  *string
	Email     *string
	Bio       *string
	AvatarURL *string
}

// UserRepository определяет методы хранилища, нужные профильному сервису.
type UserRepository interface {
	// GetUserByUsername возвращает пользователя по имени.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// ExistsByUsername сообщает, занят ли username.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// ExistsByEmail сообщает, занят ли email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// UpdateUserProfile сохраняет изменённые поля профиля.
	UpdateUserProfile(ctx context.Context, user models.User) error
}

// UserService реализует операции над собственным профилем пользователя.
type UserService struct {
	users UserRepository
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(users UserRepository) *UserService {
	return &UserService{users: users}
}

// Get возвращает профиль пользователя по имени.
func (s *UserService) Get(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile обновляет профиль текущего пользователя.
//
// Смена username или email проходит те же проверки уникальности, что и
// регистрация; нарушение ограничения базы — авторитетный исход гонки.
func (s *UserService) UpdateProfile(ctx context.Context, username string, req ProfileUpdate) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Username != nil && *req.Username != user.Username {
		taken, err := s.users.ExistsByUsername(ctx, *req.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
		user.Username = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		taken, err := s.users.ExistsByEmail(ctx, *req.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailTaken
		}
		user.Email = *req.Email
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}

	if err := s.users.UpdateUserProfile(ctx, *user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameTaken):
			return nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}
