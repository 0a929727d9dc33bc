// Package publiclist реализует HTTP-обработчик для ленты публичных заметок.
//
// Endpoint доступен без аутентификации.
package publiclist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	notelist "github.com/magabrotheeeer/secure-notes/internal/http/handlers/note/list"
	"github.com/magabrotheeeer/secure-notes/internal/http/response"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// Service описывает интерфейс бизнес-логики заметок.
type Service interface {
	ListPublic(ctx context.Context, limit, offset int) ([]*models.Note, error)
}

// Handler обрабатывает HTTP-запросы на ленту публичных заметок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Публичные заметки
// @Description Возвращает публичные заметки всех пользователей постранично, новые первыми.
// @Tags Notes
// @Produce  json
// @Param limit query int false "Размер страницы (по умолчанию 20, максимум 100)"
// @Param offset query int false "Смещение"
// @Success 200 {array} models.Note "Список публичных заметок"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /notes/public [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.note.publiclist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, offset := notelist.Pagination(r)

	notes, err := h.service.ListPublic(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list public notes", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("public notes listed", slog.Int("count", len(notes)))
	render.JSON(w, r, response.OKWithData(notes))
}
