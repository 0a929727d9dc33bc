// Package read реализует HTTP-обработчик для чтения одной заметки.
//
// Публичные заметки доступны всем, приватные — только владельцу. Для чужой
// приватной заметки ответ неотличим от ответа на несуществующий идентификатор.
package read

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
	noteservice "github.com/magabrotheeeer/secure-notes/internal/services/note"
)

// Service описывает интерфейс бизнес-логики заметок.
type Service interface {
	Read(ctx context.Context, p authz.Principal, id int) (*models.Note, error)
}

// Handler обрабатывает HTTP-запросы на чтение заметки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Чтение заметки
// @Description Возвращает заметку по идентификатору с учетом прав доступа.
// @Tags Notes
// @Produce  json
// @Param id path int true "Идентификатор заметки"
// @Success 200 {object} models.Note "Заметка"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 404 {object} response.ErrorResponse "Заметка не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /notes/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.note.read"

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

	note, err := h.service.Read(r.Context(), principal, id)
	if err != nil {
		if errors.Is(err, noteservice.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("note not found"))
			return
		}
		log.Error("failed to read note", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("note read", slog.Int("note_id", id))
	render.JSON(w, r, response.OKWithData(note))
}
