// Package services содержит бизнес-логику для управления заметками и их кеширования.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/secure-notes/internal/authz"
	"github.com/magabrotheeeer/secure-notes/internal/models"
	"github.com/magabrotheeeer/secure-notes/internal/storage/repository"
)

// ErrNotFound — заметка отсутствует либо принципал не имеет к ней доступа.
// Обе причины намеренно сведены в один ответ: чужая приватная заметка
// неотличима от несуществующей.
var ErrNotFound = errors.New("note not found")

// NoteRepository определяет методы для работы с заметками в хранилище.
type NoteRepository interface {
	// CreateNote добавляет новую заметку и возвращает её ID.
	CreateNote(ctx context.Context, note models.Note) (int, error)
	// GetNote возвращает заметку по ID.
	GetNote(ctx context.Context, id int) (*models.Note, error)
	// UpdateNote обновляет данные заметки, возвращает количество затронутых строк.
	UpdateNote(ctx context.Context, note models.Note) (int, error)
	// DeleteNote удаляет заметку по ID, возвращает количество удалённых строк.
	DeleteNote(ctx context.Context, id int) (int, error)
	// ListNotesByOwner возвращает заметки владельца с пагинацией.
	ListNotesByOwner(ctx context.Context, ownerUID string, limit, offset int) ([]*models.Note, error)
	// ListPublicNotes возвращает публичные заметки с пагинацией.
	ListPublicNotes(ctx context.Context, limit, offset int) ([]*models.Note, error)
	// SearchNotesByOwner ищет по заметкам владельца.
	SearchNotesByOwner(ctx context.Context, ownerUID, pattern string) ([]*models.Note, error)
	// SearchPublicNotes ищет по публичным заметкам.
	SearchPublicNotes(ctx context.Context, pattern string) ([]*models.Note, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// NoteService реализует бизнес-логику работы с заметками.
// Решения о доступе принимает политика authz, сервис — единственная точка её вызова
// для заметок: обработчики сами доступ не проверяют.
type NoteService struct {
	repo  NoteRepository
	cache Cache
	log   *slog.Logger
}

// NewNoteService создает новый экземпляр NoteService.
func NewNoteService(repo NoteRepository, cache Cache, log *slog.Logger) *NoteService {
	return &NoteService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create создает новую заметку текущего принципала и возвращает её ID.
func (s *NoteService) Create(ctx context.Context, p authz.Principal, req models.DummyNote) (int, error) {
	if p.IsAnonymous() {
		return 0, ErrNotFound
	}
	note := models.Note{
		Title:    req.Title,
		Content:  req.Content,
		OwnerUID: p.UID,
		IsPublic: req.IsPublic,
	}
	id, err := s.repo.CreateNote(ctx, note)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new note", slog.Int("id", id))

	note.ID = id
	note.Owner = p.Username
	cacheKey := fmt.Sprintf("note:%d", id)
	if err := s.cache.Set(cacheKey, note, time.Hour); err != nil {
		s.log.Warn("failed to cache note", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return id, nil
}

// Read возвращает заметку по ID, если политика разрешает её чтение принципалу.
func (s *NoteService) Read(ctx context.Context, p authz.Principal, id int) (*models.Note, error) {
	cacheKey := fmt.Sprintf("note:%d", id)
	var cached models.Note
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read note from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		// Политика применяется и к кешированной копии.
		if !authz.CanReadNote(p, &cached) {
			return nil, ErrNotFound
		}
		return &cached, nil
	}

	note, err := s.repo.GetNote(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !authz.CanReadNote(p, note) {
		return nil, ErrNotFound
	}
	if err := s.cache.Set(cacheKey, note, time.Hour); err != nil {
		s.log.Warn("failed to cache note", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return note, nil
}

// Update обновляет заметку, если принципал — её владелец, и инвалидирует кеш.
func (s *NoteService) Update(ctx context.Context, p authz.Principal, id int, req models.DummyNote) error {
	note, err := s.repo.GetNote(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !authz.CanMutateNote(p, note) {
		return ErrNotFound
	}

	note.Title = req.Title
	note.Content = req.Content
	note.IsPublic = req.IsPublic
	if _, err := s.repo.UpdateNote(ctx, *note); err != nil {
		return err
	}

	cacheKey := fmt.Sprintf("note:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate note cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	s.log.Info("updated note", slog.Int("id", id))
	return nil
}

// Remove физически удаляет заметку, если принципал — её владелец.
func (s *NoteService) Remove(ctx context.Context, p authz.Principal, id int) error {
	note, err := s.repo.GetNote(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !authz.CanMutateNote(p, note) {
		return ErrNotFound
	}

	if _, err := s.repo.DeleteNote(ctx, id); err != nil {
		return err
	}

	cacheKey := fmt.Sprintf("note:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate note cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	s.log.Info("removed note", slog.Int("id", id))
	return nil
}

// ListOwn возвращает заметки текущего принципала с пагинацией.
func (s *NoteService) ListOwn(ctx context.Context, p authz.Principal, limit, offset int) ([]*models.Note, error) {
	if p.IsAnonymous() {
		return nil, ErrNotFound
	}
	return s.repo.ListNotesByOwner(ctx, p.UID, limit, offset)
}

// ListPublic возвращает публичные заметки, доступно анонимно.
func (s *NoteService) ListPublic(ctx context.Context, limit, offset int) ([]*models.Note, error) {
	return s.repo.ListPublicNotes(ctx, limit, offset)
}

// SearchOwn ищет по заголовкам и тексту заметок текущего принципала.
func (s *NoteService) SearchOwn(ctx context.Context, p authz.Principal, query string) ([]*models.Note, error) {
	if p.IsAnonymous() {
		return nil, ErrNotFound
	}
	return s.repo.SearchNotesByOwner(ctx, p.UID, query)
}

// SearchPublic ищет по публичным заметкам, доступно анонимно.
func (s *NoteService) SearchPublic(ctx context.Context, query string) ([]*models.Note, error) {
	return s.repo.SearchPublicNotes(ctx, query)
}
