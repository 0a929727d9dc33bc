// Package services содержит журнал аудита безопасности: запись событий
// в хранилище и по возможности публикацию их во внешнюю шину.
package services

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/secure-notes/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// AuditRepository определяет методы хранилища журнала аудита.
type AuditRepository interface {
	// CreateAuditEntry сохраняет запись журнала и возвращает её ID.
	CreateAuditEntry(ctx context.Context, entry models.AuditEntry) (int, error)
	// ListAuditEntries возвращает записи журнала, новые первыми.
	ListAuditEntries(ctx context.Context, limit, offset int) ([]*models.AuditEntry, error)
}

// AuditService пишет события безопасности в журнал.
// Запись — best effort: отказ журнала логируется, но никогда
// не проваливает обслуживаемый запрос.
type AuditService struct {
	repo    AuditRepository
	channel *amqp.Channel // nil, если шина недоступна или не настроена
	log     *slog.Logger
}

// NewAuditService создает новый экземпляр AuditService.
// channel может быть nil — тогда события пишутся только в хранилище.
func NewAuditService(repo AuditRepository, channel *amqp.Channel, log *slog.Logger) *AuditService {
	return &AuditService{
		repo:    repo,
		channel: channel,
		log:     log,
	}
}

// Record сохраняет событие в журнал и публикует его в exchange аудита.
func (s *AuditService) Record(ctx context.Context, entry models.AuditEntry) {
	if entry.Level == "" {
		entry.Level = models.AuditInfo
	}

	if _, err := s.repo.CreateAuditEntry(ctx, entry); err != nil {
		s.log.Error("failed to store audit entry",
			slog.String("action", entry.Action), sl.Err(err))
	}

	if s.channel == nil {
		return
	}
	routingKey := entry.EntityType + "." + entry.Action
	if err := rabbitmq.PublishMessage(s.channel, rabbitmq.AuditExchange, routingKey, entry); err != nil {
		s.log.Warn("failed to publish audit entry",
			slog.String("action", entry.Action), sl.Err(err))
	}
}

// List возвращает страницу журнала аудита, новые записи первыми.
func (s *AuditService) List(ctx context.Context, limit, offset int) ([]*models.AuditEntry, error) {
	return s.repo.ListAuditEntries(ctx, limit, offset)
}
