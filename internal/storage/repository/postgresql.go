// Package repository реализует хранилище данных на основе PostgreSQL
// для управления пользователями, заметками, файлами и журналом аудита.
// Все запросы параметризованы — текст запроса никогда не собирается
// конкатенацией пользовательского ввода.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки уровня хранилища. Сервисы переводят их в свои ошибки API.
var (
	// ErrNotFound — запрошенная строка отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrUsernameTaken — нарушено ограничение уникальности username.
	// База — последний арбитр гонки "проверил, потом вставил".
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailTaken — нарушено ограничение уникальности email.
	ErrEmailTaken = errors.New("email already taken")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с пользователями, заметками, файлами и аудитом.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'users'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table users missing or query error: %w", err)
	}
	return nil
}

// classifyUnique переводит нарушение уникального ограничения PostgreSQL
// в доменную ошибку по имени ограничения. Прочие ошибки возвращаются как есть.
func classifyUnique(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "users_username_key":
		return ErrUsernameTaken
	case "users_email_key":
		return ErrEmailTaken
	}
	return err
}
