// Package remove реализует HTTP-обработчик для удаления заметки.
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
	noteservice "github.com/magabrotheeeer/secure-notes/internal/services/note"
)

// Service описывает интерфейс бизнес-логики заметок.
type Service interface {
	Remove(ctx context.Context, p authz.Principal, id int) error
}

// Handler обрабатывает HTTP-запросы на удаление заметки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление заметки
// @Description Удаляет заметку; операция доступна только владельцу.
// @Tags Notes
// @Produce  json
// @Security BearerAuth
// @Param id path int true "Идентификатор заметки"
// @Success 200 {object} response.Response "Заметка удалена"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 404 {object} response.ErrorResponse "Заметка не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /notes/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.note.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid note id"))
		return
	}

	principal := middlewarectx.Principal(r.Context())

	if err := h.service.Remove(r.Context(), principal, id); err != nil {
		if errors.Is(err, noteservice.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("note not found"))
			return
		}
		log.Error("failed to remove note", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("note removed", slog.Int("note_id", id), slog.String("username", principal.Username))
	render.JSON(w, r, response.OK())
}
