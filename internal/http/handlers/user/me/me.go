// Package me реализует HTTP-обработчик для просмотра собственного профиля.
package me

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/secure-notes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/secure-notes/internal/http/response"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/models"
	userservice "github.com/magabrotheeeer/secure-notes/internal/services/user"
)

// Service описывает интерфейс бизнес-логики профиля.
type Service interface {
	Get(ctx context.Context, username string) (*models.User, error)
}

// Handler обрабатывает HTTP-запросы на чтение собственного профиля.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Собственный профиль
// @Description Возвращает профиль текущего аутентифицированного пользователя.
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} models.User "Профиль пользователя"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.me"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	principal := middlewarectx.Principal(r.Context())

	user, err := h.service.Get(r.Context(), principal.Username)
	if err != nil {
		if errors.Is(err, userservice.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to load profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("profile loaded", slog.String("username", user.Username))
	render.JSON(w, r, response.OKWithData(user))
}
