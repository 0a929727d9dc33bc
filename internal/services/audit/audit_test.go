package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/secure-notes/internal/models"
	services "github.com/magabrotheeeer/secure-notes/internal/services/audit"
)

// AuditRepoMock реализует интерфейс services.AuditRepository
type AuditRepoMock struct {
	mock.Mock
}

func (m *AuditRepoMock) CreateAuditEntry(ctx context.Context, entry models.AuditEntry) (int, error) {
	args := m.Called(ctx, entry)
	return args.Int(0), args.Error(1)
}

func (m *AuditRepoMock) ListAuditEntries(ctx context.Context, limit, offset int) ([]*models.AuditEntry, error) {
	args := m.Called(ctx, limit, offset)
	if res := args.Get(0); res != nil {
		return res.([]*models.AuditEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestAuditService_Record(t *testing.T) {
	t.Run("entry stored with its level", func(t *testing.T) {
		repo := new(AuditRepoMock)
		repo.On("CreateAuditEntry", mock.Anything, mock.MatchedBy(func(e models.AuditEntry) bool {
			return e.Action == "update_roles" && e.Level == models.AuditCritical
		})).Return(1, nil)
		svc := services.NewAuditService(repo, nil, discardLogger())

		svc.Record(context.Background(), models.AuditEntry{
			Action:     "update_roles",
			EntityType: "user",
			Level:      models.AuditCritical,
		})

		repo.AssertExpectations(t)
	})

	t.Run("empty level defaults to INFO", func(t *testing.T) {
		repo := new(AuditRepoMock)
		repo.On("CreateAuditEntry", mock.Anything, mock.MatchedBy(func(e models.AuditEntry) bool {
			return e.Level == models.AuditInfo
		})).Return(1, nil)
		svc := services.NewAuditService(repo, nil, discardLogger())

		svc.Record(context.Background(), models.AuditEntry{Action: "login", EntityType: "user"})

		repo.AssertExpectations(t)
	})

	t.Run("storage failure does not propagate", func(t *testing.T) {
		repo := new(AuditRepoMock)
		repo.On("CreateAuditEntry", mock.Anything, mock.Anything).Return(0, errors.New("db error"))
		svc := services.NewAuditService(repo, nil, discardLogger())

		// Запись должна завершиться молча: аудит не валит запрос
		svc.Record(context.Background(), models.AuditEntry{Action: "login", EntityType: "user"})

		repo.AssertExpectations(t)
	})
}

func TestAuditService_List(t *testing.T) {
	repo := new(AuditRepoMock)
	repo.On("ListAuditEntries", mock.Anything, 20, 0).Return([]*models.AuditEntry{
		{ID: 2, Action: "logout"},
		{ID: 1, Action: "login"},
	}, nil)
	svc := services.NewAuditService(repo, nil, discardLogger())

	entries, err := svc.List(context.Background(), 20, 0)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "logout", entries[0].Action)
	repo.AssertExpectations(t)
}
