// Package services содержит логику бизнес-уровня для регистрации,
// аутентификации и управления сессионными токенами.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/magabrotheeeer/secure-notes/internal/lib/jwt"
	"github.com/magabrotheeeer/secure-notes/internal/lib/password"
	"github.com/magabrotheeeer/secure-notes/internal/models"
	"github.com/magabrotheeeer/secure-notes/internal/storage/repository"
)

// Ошибки аутентификации и регистрации.
var (
	// ErrUsernameTaken — имя пользователя уже занято.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailTaken — email уже зарегистрирован.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials — пользователь не найден или пароль неверен.
	// Оба случая намеренно неразличимы для вызывающего.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled — учётная запись отключена администратором.
	// Сигнал отдаётся только при верном пароле.
	ErrAccountDisabled = errors.New("account disabled")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)
	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// ExistsByUsername сообщает, занят ли username.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// ExistsByEmail сообщает, занят ли email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// UpdateUserPassword заменяет хэш пароля пользователя.
	UpdateUserPassword(ctx context.Context, userUID, passwordHash string) error
}

// TokenDenylist описывает deny-list отозванных токенов.
type TokenDenylist interface {
	// DenyToken помещает jti в deny-list на время ttl.
	DenyToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService отвечает за регистрацию, авторизацию и отзыв JWT.
type AuthService struct {
	users      UserRepository
	jwtMaker   jwt.Maker
	denylist   TokenDenylist
	bcryptCost int
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, denylist TokenDenylist, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		jwtMaker:   jwtMaker,
		denylist:   denylist,
		bcryptCost: bcryptCost,
	}
}

// Register создает нового пользователя с хэшированием пароля и дефолтной ролью "user".
//
// Проверки существования username и email — быстрый путь для дружелюбной ошибки;
// гонку двух одновременных регистраций разрешает уникальное ограничение базы,
// его нарушение приходит из хранилища уже классифицированным.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if taken {
		return "", ErrUsernameTaken
	}
	taken, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if taken {
		return "", ErrEmailTaken
	}

	hashed, err := password.GetHash(rawPassword, s.bcryptCost)
	if err != nil {
		return "", err
	}
	user := models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Roles:        []string{models.RoleUser}, // дефолтная роль при регистрации
		Enabled:      true,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameTaken):
			return "", ErrUsernameTaken
		case errors.Is(err, repository.ErrEmailTaken):
			return "", ErrEmailTaken
		}
		return "", err
	}
	return uid, nil
}

// Login проверяет пароль пользователя и генерирует JWT со снимком его ролей.
//
// "Нет такого пользователя" и "неверный пароль" дают одну и ту же ошибку;
// при отсутствии пользователя выполняется холостая проверка bcrypt,
// чтобы время ответа не выдавало причину отказа.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (token string, user *models.User, err error) {
	user, err = s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			password.DummyCompare(rawPassword)
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.Enabled {
		return "", nil, ErrAccountDisabled
	}
	token, err = s.jwtMaker.GenerateToken(user.Username, user.Roles, user.UID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Logout отзывает токен: его jti попадает в deny-list до истечения срока токена.
func (s *AuthService) Logout(ctx context.Context, tokenStr string) error {
	claims, err := s.jwtMaker.ParseToken(tokenStr)
	if err != nil {
		return err
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	return s.denylist.DenyToken(ctx, claims.ID, ttl)
}

// ChangePassword заменяет пароль пользователя после проверки текущего.
func (s *AuthService) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if err := password.CompareHash(user.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCredentials
	}
	hashed, err := password.GetHash(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdateUserPassword(ctx, user.UID, hashed)
}
