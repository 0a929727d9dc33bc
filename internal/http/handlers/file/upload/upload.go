// Package upload реализует HTTP-обработчик для загрузки файлов.
//
// Файл принимается как multipart-поле "file"; имя на диске генерируется сервером,
// оригинальное имя сохраняется только в метаданных.
package upload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/secure-notes/internal/authz"
	"github.com/magabrotheeeer/secure-notes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/secure-notes/internal/http/response"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/models"
	fileservice "github.com/magabrotheeeer/secure-notes/internal/services/file"
)

// Лимит на размер загружаемого файла.
const maxUploadSize = 10 << 20

// Service описывает интерфейс бизнес-логики файлов.
type Service interface {
	Store(ctx context.Context, p authz.Principal, originalName, contentType string, size int64, src io.Reader) (*models.FileMeta, error)
}

// Auditor описывает запись событий в журнал аудита.
type Auditor interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

// Handler обрабатывает HTTP-запросы на загрузку файлов.
type Handler struct {
	log     *slog.Logger
	service Service
	audit   Auditor
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, audit Auditor) *Handler {
	return &Handler{
		log:     log,
		service: service,
		audit:   audit,
	}
}

// ServeHTTP godoc
// @Summary Загрузка файла
// @Description Сохраняет файл текущего пользователя, возвращает метаданные.
// @Tags Files
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param file formData file true "Загружаемый файл"
// @Success 200 {object} models.FileMeta "Метаданные сохраненного файла"
// @Failure 400 {object} response.ErrorResponse "Отсутствует файл или превышен лимит размера"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /files [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.file.upload"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	principal := middlewarectx.Principal(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	src, header, err := r.FormFile("file")
	if err != nil {
		log.Error("failed to read multipart file", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("file field is required"))
		return
	}
	defer func() { _ = src.Close() }()

	meta, err := h.service.Store(r.Context(), principal,
		header.Filename, header.Header.Get("Content-Type"), header.Size, src)
	if err != nil {
		if errors.Is(err, fileservice.ErrEmptyFile) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("empty file"))
			return
		}
		log.Error("failed to store file", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	h.audit.Record(r.Context(), models.AuditEntry{
		Action:     "upload",
		EntityType: "file",
		EntityID:   strconv.Itoa(meta.ID),
		Username:   principal.Username,
		Details:    meta.OriginalFilename,
		IPAddress:  r.RemoteAddr,
		Level:      models.AuditInfo,
	})

	log.Info("file uploaded",
		slog.Int("file_id", meta.ID),
		slog.String("username", principal.Username),
		slog.Int64("size", meta.Size),
	)
	render.JSON(w, r, response.OKWithData(meta))
}
