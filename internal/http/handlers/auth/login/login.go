// Package login реализует HTTP-обработчик для запросов аутентификации пользователей.
//
// В нём определяется структура Request для входных данных, выполняется декодирование JSON,
// проверка и валидация полей, а также делегирование операции входа сервису аутентификации.
// При успешной аутентификации возвращается JSON с JWT; ответы на "нет такого
// пользователя" и "неверный пароль" совпадают по форме и содержимому.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/secure-notes/internal/http/response"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/models"
	authservice "github.com/magabrotheeeer/secure-notes/internal/services/auth"
)

// Request — структура входных данных для авторизации.
//
// Username должен быть строкой длиной от 3 до 50 символов, пароль — минимум 8 символов.
type Request struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, username, password string) (string, *models.User, error)
}

// Auditor описывает запись событий в журнал аудита.
type Auditor interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log      *slog.Logger
	service  Service
	audit    Auditor
	validate *validator.Validate
}

// New создает новый экземпляр Handler с указанными логгером, сервисом и аудитом.
func New(log *slog.Logger, service Service, audit Auditor) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		audit:    audit,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Авторизация пользователя
// @Description Аутентифицирует пользователя по имени и паролю. Возвращает JWT со снимком ролей.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} map[string]any "Успешная авторизация"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 403 {object} response.ErrorResponse "Учётная запись отключена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("username", req.Username))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authservice.ErrInvalidCredentials):
			log.Info("login failed", slog.String("username", req.Username))
			h.audit.Record(r.Context(), models.AuditEntry{
				Action:     "login_failed",
				EntityType: "user",
				Username:   req.Username,
				IPAddress:  r.RemoteAddr,
				Level:      models.AuditWarning,
			})
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid credentials"))
		case errors.Is(err, authservice.ErrAccountDisabled):
			log.Info("login attempt for disabled account", slog.String("username", req.Username))
			h.audit.Record(r.Context(), models.AuditEntry{
				Action:     "login_disabled",
				EntityType: "user",
				Username:   req.Username,
				IPAddress:  r.RemoteAddr,
				Level:      models.AuditWarning,
			})
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("account disabled"))
		default:
			log.Error("login failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal server error"))
		}
		return
	}

	h.audit.Record(r.Context(), models.AuditEntry{
		Action:     "login",
		EntityType: "user",
		EntityID:   user.UID,
		Username:   user.Username,
		IPAddress:  r.RemoteAddr,
		Level:      models.AuditInfo,
	})

	log.Info("login success", slog.String("username", req.Username))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token":    token,
		"username": user.Username,
		"roles":    user.Roles,
	}))
}
