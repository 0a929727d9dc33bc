// Package logout реализует HTTP-обработчик для завершения сессии пользователя.
//
// Предъявленный токен помещается в список отозванных до истечения его срока действия,
// после чего он перестает приниматься middleware аутентификации.
package logout

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/secure-notes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/secure-notes/internal/http/response"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// Service описывает интерфейс бизнес-логики завершения сессии.
type Service interface {
	Logout(ctx context.Context, token string) error
}

// Auditor описывает запись событий в журнал аудита.
type Auditor interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

// Handler обрабатывает HTTP-запросы на выход из системы.
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
// @Summary Выход из системы
// @Description Отзывает предъявленный JWT до конца его срока действия.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Сессия завершена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	principal := middlewarectx.Principal(r.Context())

	authHeader := r.Header.Get("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authorization required"))
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		log.Error("failed to revoke token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	h.audit.Record(r.Context(), models.AuditEntry{
		Action:     "logout",
		EntityType: "user",
		EntityID:   principal.UID,
		Username:   principal.Username,
		IPAddress:  r.RemoteAddr,
		Level:      models.AuditInfo,
	})

	log.Info("logout success", slog.String("username", principal.Username))
	render.JSON(w, r, response.OK())
}
