// Package remove реализует HTTP-обработчик для удаления файла.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/secure-notes/internal/authz"
	"github.com/magabrotheeeer/secure-notes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/secure-notes/internal/http/response"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/models"
	fileservice "github.com/magabrotheeeer/secure-notes/internal/services/file"
)

// Service описывает интерфейс бизнес-логики файлов.
type Service interface {
	Remove(ctx context.Context, p authz.Principal, id int) error
}

// Auditor описывает запись событий в журнал аудита.
type Auditor interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

// Handler обрабатывает HTTP-запросы на удаление файла.
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
// @Summary Удаление файла
// @Description Удаляет файл с диска и его метаданные; доступно только владельцу.
// @Tags Files
// @Produce  json
// @Security BearerAuth
// @Param id path int true "Идентификатор файла"
// @Success 200 {object} response.Response "Файл удален"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 404 {object} response.ErrorResponse "Файл не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /files/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.file.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid file id"))
		return
	}

	principal := middlewarectx.Principal(r.Context())

	if err := h.service.Remove(r.Context(), principal, id); err != nil {
		if errors.Is(err, fileservice.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("file not found"))
			return
		}
		log.Error("failed to remove file", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	h.audit.Record(r.Context(), models.AuditEntry{
		Action:     "delete",
		EntityType: "file",
		EntityID:   strconv.Itoa(id),
		Username:   principal.Username,
		IPAddress:  r.RemoteAddr,
		Level:      models.AuditInfo,
	})

	log.Info("file removed", slog.Int("file_id", id), slog.String("username", principal.Username))
	render.JSON(w, r, response.OK())
}
