// Package auditlist реализует HTTP-обработчик просмотра журнала аудита.
package auditlist

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

// Service описывает интерфейс журнала аудита.
type Service interface {
	List(ctx context.Context, limit, offset int) ([]*models.AuditEntry, error)
}

// Handler обрабатывает HTTP-запросы на просмотр журнала аудита.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Журнал аудита
// @Description Возвращает записи журнала безопасности постранично, новые первыми. Доступно только администраторам.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param limit query int false "Размер страницы (по умолчанию 20, максимум 100)"
// @Param offset query int false "Смещение"
// @Success 200 {array} models.AuditEntry "Записи журнала"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /admin/audit [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.auditlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, offset := notelist.Pagination(r)

	entries, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list audit entries", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("audit entries listed", slog.Int("count", len(entries)))
	render.JSON(w, r, response.OKWithData(entries))
}
