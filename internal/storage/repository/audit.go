package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// CreateAuditEntry сохраняет запись журнала аудита и возвращает её ID.
func (s *Storage) CreateAuditEntry(ctx context.Context, entry models.AuditEntry) (int, error) {
	const op = "storage.CreateAuditEntry"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO audit_logs (action, entity_type, entity_id, username,
			      details, ip_address, level)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		entry.Action, entry.EntityType, entry.EntityID, entry.Username,
		entry.Details, entry.IPAddress, entry.Level).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListAuditEntries возвращает записи журнала аудита, новые первыми.
func (s *Storage) ListAuditEntries(ctx context.Context, limit, offset int) ([]*models.AuditEntry, error) {
	const op = "storage.ListAuditEntries"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, action, entity_type, entity_id, username, details,
			      ip_address, level, created_at
			  FROM audit_logs
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.AuditEntry
	for rows.Next() {
		e := &models.AuditEntry{}
		if err = rows.Scan(&e.ID, &e.Action, &e.EntityType, &e.EntityID, &e.Username,
			&e.Details, &e.IPAddress, &e.Level, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
