// Package download реализует HTTP-обработчик для скачивания файла.
//
// Отдает содержимое с оригинальным именем в Content-Disposition; чужой файл
// неотличим от несуществующего.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
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
	fileservice "github.com/magabrotheeeer/secure-notes/internal/services/file"
)

// Service описывает интерфейс бизнес-логики файлов.
type Service interface {
	Open(ctx context.Context, p authz.Principal, id int) (*models.FileMeta, io.ReadSeekCloser, error)
}

// Handler обрабатывает HTTP-запросы на скачивание файла.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Скачивание файла
// @Description Возвращает содержимое файла; доступно только владельцу.
// @Tags Files
// @Produce  octet-stream
// @Security BearerAuth
// @Param id path int true "Идентификатор файла"
// @Success 200 {file} binary "Содержимое файла"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 404 {object} response.ErrorResponse "Файл не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /files/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.file.download"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid file id"))
		return
	}

	principal := middlewarectx.Principal(r.Context())

	meta, content, err := h.service.Open(r.Context(), principal, id)
	if err != nil {
		if errors.Is(err, fileservice.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("file not found"))
			return
		}
		log.Error("failed to open file", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}
	defer func() { _ = content.Close() }()

	w.Header().Set("Content-Type", meta.ContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", meta.OriginalFilename))

	log.Info("file downloaded", slog.Int("file_id", id), slog.String("username", principal.Username))
	http.ServeContent(w, r, meta.OriginalFilename, meta.CreatedAt, content)
}
