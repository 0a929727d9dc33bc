// Package search реализует HTTP-обработчик для поиска заметок по подстроке.
//
// Аутентифицированный пользователь ищет среди своих заметок, анонимный — среди
// публичных. Строка поиска всегда передается в запрос как связанный параметр.
package search

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/secure-notes/internal/authz"
	"github.com/magabrotheeeer/secure-notes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/secure-notes/internal/http/response"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

const maxQueryLen = 200

// Service описывает интерфейс бизнес-логики заметок.
type Service interface {
	SearchOwn(ctx context.Context, p authz.Principal, query string) ([]*models.Note, error)
	SearchPublic(ctx context.Context, query string) ([]*models.Note, error)
}

// Handler обрабатывает HTTP-запросы на поиск заметок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Поиск заметок
// @Description Ищет заметки по подстроке в заголовке и тексте без учета регистра.
// @Tags Notes
// @Produce  json
// @Param q query string true "Строка поиска"
// @Success 200 {array} models.Note "Найденные заметки"
// @Failure 422 {object} response.ErrorResponse "Пустая или слишком длинная строка поиска"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /notes/search [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.note.search"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" || len(query) > maxQueryLen {
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("invalid search query"))
		return
	}

	principal := middlewarectx.Principal(r.Context())

	var (
		notes []*models.Note
		err   error
	)
	if principal.IsAnonymous() {
		notes, err = h.service.SearchPublic(r.Context(), query)
	} else {
		notes, err = h.service.SearchOwn(r.Context(), principal, query)
	}
	if err != nil {
		log.Error("failed to search notes", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("notes searched", slog.Int("count", len(notes)))
	render.JSON(w, r, response.OKWithData(notes))
}
