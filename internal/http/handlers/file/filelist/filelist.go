// Package filelist реализует HTTP-обработчик для списка собственных файлов.
package filelist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/secure-notes/internal/authz"
	notelist "github.com/magabrotheeeer/secure-notes/internal/http/handlers/note/list"
	"github.com/magabrotheeeer/secure-notes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/secure-notes/internal/http/response"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// Service описывает интерфейс бизнес-логики файлов.
type Service interface {
	ListOwn(ctx context.Context, p authz.Principal, limit, offset int) ([]*models.FileMeta, error)
}

// Handler обрабатывает HTTP-запросы на список собственных файлов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список своих файлов
// @Description Возвращает метаданные файлов текущего пользователя постранично.
// @Tags Files
// @Produce  json
// @Security BearerAuth
// @Param limit query int false "Размер страницы (по умолчанию 20, максимум 100)"
// @Param offset query int false "Смещение"
// @Success 200 {array} models.FileMeta "Список файлов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /files [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.file.filelist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	principal := middlewarectx.Principal(r.Context())
	limit, offset := notelist.Pagination(r)

	files, err := h.service.ListOwn(r.Context(), principal, limit, offset)
	if err != nil {
		log.Error("failed to list files", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("files listed", slog.Int("count", len(files)), slog.String("username", principal.Username))
	render.JSON(w, r, response.OKWithData(files))
}
