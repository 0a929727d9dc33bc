// Package userremove реализует HTTP-обработчик административного удаления пользователя.
//
// Активная учётная запись сначала отключается; повторный вызов удаляет её навсегда.
package userremove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/secure-notes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/secure-notes/internal/http/response"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/models"
	adminservice "github.com/magabrotheeeer/secure-notes/internal/services/admin"
)

// Service описывает интерфейс административной бизнес-логики.
type Service interface {
	RemoveUser(ctx context.Context, userUID string) error
}

// Auditor описывает запись событий в журнал аудита.
type Auditor interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

// Handler обрабатывает HTTP-запросы на удаление пользователя.
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
// @Summary Удаление пользователя
// @Description Отключает активную учётную запись, отключённую удаляет навсегда. Доступно только администраторам.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param uid path string true "UID пользователя"
// @Success 200 {object} response.Response "Учётная запись отключена или удалена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 409 {object} response.ErrorResponse "Нельзя убрать последнего администратора"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /admin/users/{uid} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userremove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid := chi.URLParam(r, "uid")
	principal := middlewarectx.Principal(r.Context())

	if err := h.service.RemoveUser(r.Context(), uid); err != nil {
		switch {
		case errors.Is(err, adminservice.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		case errors.Is(err, adminservice.ErrLastAdmin):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("cannot remove the last admin"))
		default:
			log.Error("failed to remove user", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal server error"))
		}
		return
	}

	h.audit.Record(r.Context(), models.AuditEntry{
		Action:     "remove_user",
		EntityType: "user",
		EntityID:   uid,
		Username:   principal.Username,
		IPAddress:  r.RemoteAddr,
		Level:      models.AuditCritical,
	})

	log.Info("user removed", slog.String("uid", uid), slog.String("admin", principal.Username))
	render.JSON(w, r, response.OK())
}
