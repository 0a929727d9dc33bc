package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/secure-notes/internal/models"
)

func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	var storage *Storage
	for range 10 {
		storage, err = New(dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	_, err = storage.DB.Exec(`
        CREATE EXTENSION IF NOT EXISTS pgcrypto;

        CREATE TABLE users (
            uid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            username TEXT NOT NULL,
            email TEXT NOT NULL,
            password_hash TEXT NOT NULL,
            roles TEXT[] NOT NULL DEFAULT ARRAY['user'],
            enabled BOOLEAN NOT NULL DEFAULT TRUE,
            bio TEXT,
            avatar_url TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CONSTRAINT users_username_key UNIQUE (username),
            CONSTRAINT users_email_key UNIQUE (email)
        );

        CREATE TABLE notes (
            id SERIAL PRIMARY KEY,
            title TEXT NOT NULL,
            content TEXT NOT NULL DEFAULT '',
            owner_uid UUID NOT NULL REFERENCES users(uid) ON DELETE CASCADE,
            is_public BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );

        CREATE TABLE uploaded_files (
            id SERIAL PRIMARY KEY,
            original_filename TEXT NOT NULL,
            stored_filename TEXT NOT NULL,
            content_type TEXT NOT NULL,
            file_size BIGINT NOT NULL,
            storage_path TEXT NOT NULL,
            owner_uid UUID NOT NULL REFERENCES users(uid) ON DELETE CASCADE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );

        CREATE TABLE audit_logs (
            id SERIAL PRIMARY KEY,
            action TEXT NOT NULL,
            entity_type TEXT NOT NULL,
            entity_id TEXT,
            username TEXT,
            details TEXT,
            ip_address TEXT,
            level TEXT NOT NULL DEFAULT 'INFO',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
    `)
	require.NoError(t, err)

	cleanup := func() {
		_ = storage.DB.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return storage, cleanup
}

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его uid
func (f *TestDataFactory) CreateUser(t *testing.T, username, email string, roles []string, enabled bool) string {
	uid, err := f.storage.RegisterUser(context.Background(), models.User{
		Username:     username,
		Email:        email,
		PasswordHash: "hashedpassword",
		Roles:        roles,
		Enabled:      enabled,
	})
	require.NoError(t, err)
	return uid
}

// CreateNote создает тестовую заметку и возвращает её id
func (f *TestDataFactory) CreateNote(t *testing.T, title, content, ownerUID string, isPublic bool) int {
	id, err := f.storage.CreateNote(context.Background(), models.Note{
		Title:    title,
		Content:  content,
		OwnerUID: ownerUID,
		IsPublic: isPublic,
	})
	require.NoError(t, err)
	return id
}

// CreateFile создает тестовую запись метаданных файла и возвращает её id
func (f *TestDataFactory) CreateFile(t *testing.T, name, ownerUID string) int {
	id, err := f.storage.CreateFile(context.Background(), models.FileMeta{
		OriginalFilename: name,
		StoredFilename:   "stored_" + name,
		ContentType:      "text/plain",
		Size:             42,
		StoragePath:      "/tmp/uploads/stored_" + name,
		OwnerUID:         ownerUID,
	})
	require.NoError(t, err)
	return id
}

func TestStorage_RegisterUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	uid, err := storage.RegisterUser(ctx, models.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashedpassword",
		Roles:        []string{"user"},
		Enabled:      true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, uid)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := storage.RegisterUser(ctx, models.User{
			Username:     "alice",
			Email:        "other@example.com",
			PasswordHash: "hashedpassword",
			Roles:        []string{"user"},
			Enabled:      true,
		})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := storage.RegisterUser(ctx, models.User{
			Username:     "alice2",
			Email:        "alice@example.com",
			PasswordHash: "hashedpassword",
			Roles:        []string{"user"},
			Enabled:      true,
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("roles survive the round trip", func(t *testing.T) {
		got, err := storage.GetUserByUID(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, []string{"user"}, got.Roles)
		assert.True(t, got.Enabled)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := storage.GetUserByUsername(ctx, "nonexistent")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

// Две регистрации с одним username наперегонки: ограничение базы — арбитр,
// ровно одна вставка проходит.
func TestStorage_RegisterUser_ConcurrentSameUsername(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	const attempts = 8

	results := make(chan error, attempts)
	for i := range attempts {
		go func(i int) {
			_, err := storage.RegisterUser(ctx, models.User{
				Username:     "racer",
				Email:        fmt.Sprintf("racer%d@example.com", i),
				PasswordHash: "hashedpassword",
				Roles:        []string{"user"},
				Enabled:      true,
			})
			results <- err
		}(i)
	}

	var succeeded, conflicted int
	for range attempts {
		err := <-results
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrUsernameTaken):
			conflicted++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicted)

	var count int
	err := storage.DB.QueryRow(`SELECT COUNT(*) FROM users WHERE username = 'racer'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStorage_UserLifecycle(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	adminUID := factory.CreateUser(t, "root", "root@example.com", []string{"user", "admin"}, true)
	userUID := factory.CreateUser(t, "bob", "bob@example.com", []string{"user"}, true)

	t.Run("count enabled admins", func(t *testing.T) {
		count, err := storage.CountEnabledAdmins(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("update roles", func(t *testing.T) {
		err := storage.UpdateUserRoles(ctx, userUID, []string{"user", "admin"})
		require.NoError(t, err)

		got, err := storage.GetUserByUID(ctx, userUID)
		require.NoError(t, err)
		assert.Equal(t, []string{"user", "admin"}, got.Roles)

		count, err := storage.CountEnabledAdmins(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("disable account", func(t *testing.T) {
		err := storage.SetUserEnabled(ctx, userUID, false)
		require.NoError(t, err)

		got, err := storage.GetUserByUID(ctx, userUID)
		require.NoError(t, err)
		assert.False(t, got.Enabled)

		// Отключённый администратор не считается активным
		count, err := storage.CountEnabledAdmins(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("delete user cascades to notes", func(t *testing.T) {
		noteID := factory.CreateNote(t, "doomed", "content", userUID, false)

		err := storage.DeleteUser(ctx, userUID)
		require.NoError(t, err)

		_, err = storage.GetNote(ctx, noteID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update password", func(t *testing.T) {
		err := storage.UpdateUserPassword(ctx, adminUID, "newhash")
		require.NoError(t, err)

		got, err := storage.GetUserByUID(ctx, adminUID)
		require.NoError(t, err)
		assert.Equal(t, "newhash", got.PasswordHash)
	})

	t.Run("operations on missing uid", func(t *testing.T) {
		ghost := "00000000-0000-0000-0000-000000000000"
		assert.ErrorIs(t, storage.UpdateUserRoles(ctx, ghost, []string{"user"}), ErrNotFound)
		assert.ErrorIs(t, storage.SetUserEnabled(ctx, ghost, false), ErrNotFound)
		assert.ErrorIs(t, storage.DeleteUser(ctx, ghost), ErrNotFound)
	})
}

func TestStorage_Notes(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	aliceUID := factory.CreateUser(t, "alice", "alice@example.com", []string{"user"}, true)
	bobUID := factory.CreateUser(t, "bob", "bob@example.com", []string{"user"}, true)

	privateID := factory.CreateNote(t, "groceries", "milk and eggs", aliceUID, false)
	publicID := factory.CreateNote(t, "announcement", "maintenance window", aliceUID, true)
	factory.CreateNote(t, "bob note", "unrelated", bobUID, false)

	t.Run("get note joins owner name", func(t *testing.T) {
		got, err := storage.GetNote(ctx, privateID)
		require.NoError(t, err)
		assert.Equal(t, "groceries", got.Title)
		assert.Equal(t, aliceUID, got.OwnerUID)
		assert.Equal(t, "alice", got.Owner)
	})

	t.Run("list by owner", func(t *testing.T) {
		notes, err := storage.ListNotesByOwner(ctx, aliceUID, 10, 0)
		require.NoError(t, err)
		assert.Len(t, notes, 2)
	})

	t.Run("list by owner with pagination", func(t *testing.T) {
		notes, err := storage.ListNotesByOwner(ctx, aliceUID, 1, 1)
		require.NoError(t, err)
		assert.Len(t, notes, 1)
	})

	t.Run("public list excludes private notes", func(t *testing.T) {
		notes, err := storage.ListPublicNotes(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, publicID, notes[0].ID)
	})

	t.Run("search by owner matches title and content", func(t *testing.T) {
		notes, err := storage.SearchNotesByOwner(ctx, aliceUID, "eggs")
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, privateID, notes[0].ID)
	})

	t.Run("search pattern is a bound parameter", func(t *testing.T) {
		notes, err := storage.SearchPublicNotes(ctx, "%' OR '1'='1")
		require.NoError(t, err)
		assert.Empty(t, notes)
	})

	t.Run("update note", func(t *testing.T) {
		rows, err := storage.UpdateNote(ctx, models.Note{
			ID:       privateID,
			Title:    "groceries v2",
			Content:  "milk only",
			IsPublic: false,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, rows)

		got, err := storage.GetNote(ctx, privateID)
		require.NoError(t, err)
		assert.Equal(t, "groceries v2", got.Title)
	})

	t.Run("delete note", func(t *testing.T) {
		rows, err := storage.DeleteNote(ctx, privateID)
		require.NoError(t, err)
		assert.Equal(t, 1, rows)

		rows, err = storage.DeleteNote(ctx, privateID)
		require.NoError(t, err)
		assert.Equal(t, 0, rows)
	})
}

func TestStorage_Files(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	aliceUID := factory.CreateUser(t, "alice", "alice@example.com", []string{"user"}, true)
	bobUID := factory.CreateUser(t, "bob", "bob@example.com", []string{"user"}, true)

	fileID := factory.CreateFile(t, "report.txt", aliceUID)
	factory.CreateFile(t, "other.txt", bobUID)

	t.Run("get file", func(t *testing.T) {
		got, err := storage.GetFile(ctx, fileID)
		require.NoError(t, err)
		assert.Equal(t, "report.txt", got.OriginalFilename)
		assert.Equal(t, aliceUID, got.OwnerUID)
		assert.Equal(t, int64(42), got.Size)
	})

	t.Run("list by owner", func(t *testing.T) {
		files, err := storage.ListFilesByOwner(ctx, aliceUID, 10, 0)
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, fileID, files[0].ID)
	})

	t.Run("delete file", func(t *testing.T) {
		rows, err := storage.DeleteFile(ctx, fileID)
		require.NoError(t, err)
		assert.Equal(t, 1, rows)

		_, err = storage.GetFile(ctx, fileID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStorage_Audit(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	for i := range 3 {
		_, err := storage.CreateAuditEntry(ctx, models.AuditEntry{
			Action:     "login",
			EntityType: "user",
			EntityID:   fmt.Sprintf("uid-%d", i),
			Username:   "alice",
			IPAddress:  "127.0.0.1",
			Level:      models.AuditInfo,
		})
		require.NoError(t, err)
	}

	entries, err := storage.ListAuditEntries(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "login", entries[0].Action)
	assert.Equal(t, "alice", entries[0].Username)
}
