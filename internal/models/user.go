// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля, набор ролей и флаг активности.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import (
	"slices"
	"time"
)

// Возможные роли пользователя.
const (
	// RoleUser — обычный пользователь, роль по умолчанию при регистрации.
	RoleUser = "user"
	// RoleAdmin — администратор, имеет доступ к административным операциям.
	RoleAdmin = "admin"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string    `json:"uid"`        // Уникальный идентификатор пользователя
	Username     string    `json:"username"`   // Имя пользователя (уникальное)
	Email        string    `json:"email"`      // Электронная почта (уникальная)
	PasswordHash string    `json:"-"`          // Хэш пароля, наружу не сериализуется
	Roles        []string  `json:"roles"`      // Набор ролей пользователя, непустой
	Enabled      bool      `json:"enabled"`    // Отключённый пользователь не может аутентифицироваться
	Bio          string    `json:"bio"`        // Краткая информация о пользователе
	AvatarURL    string    `json:"avatar_url"` // Ссылка на аватар
	CreatedAt    time.Time `json:"created_at"` // Дата создания учётной записи
}

// IsAdmin сообщает, входит ли роль admin в набор ролей пользователя.
func (u *User) IsAdmin() bool {
	return slices.Contains(u.Roles, RoleAdmin)
}

// ValidRole проверяет, что строка является известной ролью.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
