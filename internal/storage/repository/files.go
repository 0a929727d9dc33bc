package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/secure-notes/internal/models"
)

const fileColumns = `id, original_filename, stored_filename, content_type,
		file_size, storage_path, owner_uid, created_at`

func scanFile(row interface{ Scan(dest ...any) error }) (*models.FileMeta, error) {
	f := &models.FileMeta{}
	if err := row.Scan(&f.ID, &f.OriginalFilename, &f.StoredFilename, &f.ContentType,
		&f.Size, &f.StoragePath, &f.OwnerUID, &f.CreatedAt); err != nil {
		return nil, err
	}
	return f, nil
}

// CreateFile сохраняет метаданные загруженного файла и возвращает ID записи.
func (s *Storage) CreateFile(ctx context.Context, file models.FileMeta) (int, error) {
	const op = "storage.CreateFile"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO uploaded_files (original_filename, stored_filename,
			      content_type, file_size, storage_path, owner_uid)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		file.OriginalFilename, file.StoredFilename, file.ContentType,
		file.Size, file.StoragePath, file.OwnerUID).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetFile возвращает метаданные файла по его ID.
func (s *Storage) GetFile(ctx context.Context, id int) (*models.FileMeta, error) {
	const op = "storage.GetFile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + fileColumns + `
			  FROM uploaded_files
			  WHERE id = $1`
	f, err := scanFile(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return f, nil
}

// ListFilesByOwner возвращает метаданные файлов пользователя, новые первыми.
func (s *Storage) ListFilesByOwner(ctx context.Context, ownerUID string, limit, offset int) ([]*models.FileMeta, error) {
	const op = "storage.ListFilesByOwner"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + fileColumns + `
			  FROM uploaded_files
			  WHERE owner_uid = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, ownerUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.FileMeta
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteFile удаляет метаданные файла и возвращает количество удалённых строк.
func (s *Storage) DeleteFile(ctx context.Context, id int) (int, error) {
	const op = "storage.DeleteFile"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM uploaded_files WHERE id = $1`
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
