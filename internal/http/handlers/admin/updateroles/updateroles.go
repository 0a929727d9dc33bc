// Package updateroles реализует HTTP-обработчик административной смены ролей.
//
// Понижение последнего активного администратора запрещено.
package updateroles

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/secure-notes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/secure-notes/internal/http/response"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/models"
	adminservice "github.com/magabrotheeeer/secure-notes/internal/services/admin"
)

// Request — структура входных данных для смены ролей.
type Request struct {
	Roles []string `json:"roles" validate:"required,min=1"`
}

// Service описывает интерфейс административной бизнес-логики.
type Service interface {
	UpdateRoles(ctx context.Context, userUID string, roles []string) (*models.User, error)
}

// Auditor описывает запись событий в журнал аудита.
type Auditor interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

// Handler обрабатывает HTTP-запросы на смену ролей пользователя.
type Handler struct {
	log      *slog.Logger
	service  Service
	audit    Auditor
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, audit Auditor) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		audit:    audit,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Смена ролей пользователя
// @Description Заменяет набор ролей пользователя. Доступно только администраторам.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param uid path string true "UID пользователя"
// @Param request body Request true "Новый набор ролей"
// @Success 200 {object} models.User "Пользователь с обновленными ролями"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 409 {object} response.ErrorResponse "Нельзя понизить последнего администратора"
// @Failure 422 {object} response.ErrorResponse "Некорректный набор ролей"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /admin/users/{uid}/roles [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.updateroles"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid := chi.URLParam(r, "uid")
	principal := middlewarectx.Principal(r.Context())

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, err := h.service.UpdateRoles(r.Context(), uid, req.Roles)
	if err != nil {
		switch {
		case errors.Is(err, adminservice.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		case errors.Is(err, adminservice.ErrEmptyRoles), errors.Is(err, adminservice.ErrUnknownRole):
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("invalid role set"))
		case errors.Is(err, adminservice.ErrLastAdmin):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("cannot demote the last admin"))
		default:
			log.Error("failed to update roles", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal server error"))
		}
		return
	}

	h.audit.Record(r.Context(), models.AuditEntry{
		Action:     "update_roles",
		EntityType: "user",
		EntityID:   user.UID,
		Username:   principal.Username,
		Details:    "roles: " + strings.Join(user.Roles, ","),
		IPAddress:  r.RemoteAddr,
		Level:      models.AuditCritical,
	})

	log.Info("roles updated",
		slog.String("uid", uid),
		slog.Any("roles", user.Roles),
		slog.String("admin", principal.Username),
	)
	render.JSON(w, r, response.OKWithData(user))
}
