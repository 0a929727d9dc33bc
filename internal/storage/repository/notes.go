package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// noteColumns — список полей заметки в порядке сканирования scanNote.
// Имя владельца подтягивается из users для отдачи наружу.
const noteColumns = `n.id, n.title, n.content, n.owner_uid, u.username,
		n.is_public, n.created_at, n.updated_at`

func scanNote(row interface{ Scan(dest ...any) error }) (*models.Note, error) {
	n := &models.Note{}
	if err := row.Scan(&n.ID, &n.Title, &n.Content, &n.OwnerUID, &n.Owner,
		&n.IsPublic, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	return n, nil
}

// CreateNote вставляет новую заметку и возвращает её ID.
func (s *Storage) CreateNote(ctx context.Context, note models.Note) (int, error) {
	const op = "storage.CreateNote"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO notes (title, content, owner_uid, is_public)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		note.Title, note.Content, note.OwnerUID, note.IsPublic).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetNote возвращает заметку по её ID вместе с именем владельца.
func (s *Storage) GetNote(ctx context.Context, id int) (*models.Note, error) {
	const op = "storage.GetNote"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + noteColumns + `
			  FROM notes n
			  JOIN users u ON u.uid = n.owner_uid
			  WHERE n.id = $1`
	n, err := scanNote(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// UpdateNote обновляет заголовок, текст и признак публичности заметки.
// Владелец не обновляется никогда.
func (s *Storage) UpdateNote(ctx context.Context, note models.Note) (int, error) {
	const op = "storage.UpdateNote"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE notes
			  SET title = $1, content = $2, is_public = $3, updated_at = NOW()
			  WHERE id = $4`
	result, err := s.DB.ExecContext(ctx, query,
		note.Title, note.Content, note.IsPublic, note.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeleteNote физически удаляет заметку по ID и возвращает количество удалённых строк.
func (s *Storage) DeleteNote(ctx context.Context, id int) (int, error) {
	const op = "storage.DeleteNote"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM notes WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListNotesByOwner возвращает заметки пользователя с пагинацией.
func (s *Storage) ListNotesByOwner(ctx context.Context, ownerUID string, limit, offset int) ([]*models.Note, error) {
	const op = "storage.ListNotesByOwner"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + noteColumns + `
			  FROM notes n
			  JOIN users u ON u.uid = n.owner_uid
			  WHERE n.owner_uid = $1
			  ORDER BY n.created_at DESC
			  LIMIT $2 OFFSET $3`
	return s.queryNotes(ctx, op, query, ownerUID, limit, offset)
}

// ListPublicNotes возвращает публичные заметки с пагинацией.
func (s *Storage) ListPublicNotes(ctx context.Context, limit, offset int) ([]*models.Note, error) {
	const op = "storage.ListPublicNotes"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + noteColumns + `
			  FROM notes n
			  JOIN users u ON u.uid = n.owner_uid
			  WHERE n.is_public
			  ORDER BY n.created_at DESC
			  LIMIT $1 OFFSET $2`
	return s.queryNotes(ctx, op, query, limit, offset)
}

// SearchNotesByOwner ищет по заголовку и тексту заметок пользователя.
// Шаблон поиска передаётся связанным параметром, никакой конкатенации запроса.
func (s *Storage) SearchNotesByOwner(ctx context.Context, ownerUID, pattern string) ([]*models.Note, error) {
	const op = "storage.SearchNotesByOwner"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + noteColumns + `
			  FROM notes n
			  JOIN users u ON u.uid = n.owner_uid
			  WHERE n.owner_uid = $1
			    AND (n.title ILIKE '%' || $2 || '%' OR n.content ILIKE '%' || $2 || '%')
			  ORDER BY n.created_at DESC`
	return s.queryNotes(ctx, op, query, ownerUID, pattern)
}

// SearchPublicNotes ищет по заголовку и тексту публичных заметок.
func (s *Storage) SearchPublicNotes(ctx context.Context, pattern string) ([]*models.Note, error) {
	const op = "storage.SearchPublicNotes"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + noteColumns + `
			  FROM notes n
			  JOIN users u ON u.uid = n.owner_uid
			  WHERE n.is_public
			    AND (n.title ILIKE '%' || $1 || '%' OR n.content ILIKE '%' || $1 || '%')
			  ORDER BY n.created_at DESC`
	return s.queryNotes(ctx, op, query, pattern)
}

func (s *Storage) queryNotes(ctx context.Context, op, query string, args ...any) ([]*models.Note, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
