// Package services содержит бизнес-логику для работы с загруженными файлами:
// сохранение байтов на диск, учёт метаданных в хранилище и проверки владения.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/secure-notes/internal/authz"
	"github.com/magabrotheeeer/secure-notes/internal/models"
	"github.com/magabrotheeeer/secure-notes/internal/storage/repository"
)

// Ошибки файлового сервиса.
var (
	// ErrNotFound — файл отсутствует либо принадлежит другому пользователю.
	ErrNotFound = errors.New("file not found")
	// ErrEmptyFile — попытка загрузить пустой файл.
	ErrEmptyFile = errors.New("empty file")
)

// FileRepository определяет методы для работы с метаданными файлов в хранилище.
type FileRepository interface {
	// CreateFile сохраняет метаданные файла и возвращает ID записи.
	CreateFile(ctx context.Context, file models.FileMeta) (int, error)
	// GetFile возвращает метаданные файла по ID.
	GetFile(ctx context.Context, id int) (*models.FileMeta, error)
	// ListFilesByOwner возвращает метаданные файлов владельца.
	ListFilesByOwner(ctx context.Context, ownerUID string, limit, offset int) ([]*models.FileMeta, error)
	// DeleteFile удаляет метаданные файла, возвращает количество удалённых строк.
	DeleteFile(ctx context.Context, id int) (int, error)
}

// FileService реализует загрузку, выдачу и удаление файлов пользователя.
type FileService struct {
	repo       FileRepository
	uploadRoot string
	log        *slog.Logger
}

// NewFileService создает FileService и каталог для загрузок, если его нет.
func NewFileService(repo FileRepository, uploadDir string, log *slog.Logger) (*FileService, error) {
	const op = "services.file.NewFileService"
	root, err := filepath.Abs(uploadDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &FileService{
		repo:       repo,
		uploadRoot: root,
		log:        log,
	}, nil
}

// Store сохраняет присланный файл: байты — на диск под случайным именем,
// метаданные — в хранилище. Возвращает метаданные созданной записи.
//
// Имя на диске — uuid плюс базовое имя оригинала: путь из имени клиента
// никогда не используется напрямую.
func (s *FileService) Store(ctx context.Context, p authz.Principal, originalName, contentType string, size int64, src io.Reader) (*models.FileMeta, error) {
	const op = "services.file.Store"
	if p.IsAnonymous() {
		return nil, ErrNotFound
	}
	if size == 0 {
		return nil, ErrEmptyFile
	}

	original := filepath.Base(originalName)
	if original == "" || original == "." || original == string(filepath.Separator) {
		original = "file"
	}
	stored := uuid.New().String() + "_" + original
	target := filepath.Join(s.uploadRoot, stored)

	dst, err := os.Create(target)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	written, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(target)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	meta := models.FileMeta{
		OriginalFilename: original,
		StoredFilename:   stored,
		ContentType:      contentType,
		Size:             written,
		StoragePath:      target,
		OwnerUID:         p.UID,
	}
	id, err := s.repo.CreateFile(ctx, meta)
	if err != nil {
		_ = os.Remove(target)
		return nil, err
	}
	meta.ID = id
	s.log.Info("stored uploaded file", slog.Int("id", id), slog.String("name", original))
	return &meta, nil
}

// Open возвращает метаданные и открытый файл для скачивания.
// Чтение разрешено только владельцу; закрыть файл обязан вызывающий.
func (s *FileService) Open(ctx context.Context, p authz.Principal, id int) (*models.FileMeta, io.ReadSeekCloser, error) {
	const op = "services.file.Open"
	meta, err := s.repo.GetFile(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if !authz.CanReadFile(p, meta) {
		return nil, nil, ErrNotFound
	}
	f, err := os.Open(meta.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return meta, f, nil
}

// ListOwn возвращает метаданные файлов текущего принципала.
func (s *FileService) ListOwn(ctx context.Context, p authz.Principal, limit, offset int) ([]*models.FileMeta, error) {
	if p.IsAnonymous() {
		return nil, ErrNotFound
	}
	return s.repo.ListFilesByOwner(ctx, p.UID, limit, offset)
}

// Remove удаляет файл владельца: сначала байты с диска, затем запись метаданных.
func (s *FileService) Remove(ctx context.Context, p authz.Principal, id int) error {
	const op = "services.file.Remove"
	meta, err := s.repo.GetFile(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !authz.CanMutateFile(p, meta) {
		return ErrNotFound
	}

	if err := os.Remove(meta.StoragePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.repo.DeleteFile(ctx, id); err != nil {
		return err
	}
	s.log.Info("removed uploaded file", slog.Int("id", id))
	return nil
}
