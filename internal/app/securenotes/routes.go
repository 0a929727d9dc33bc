// Package securenotes собирает приложение и регистрирует маршруты.
package securenotes

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/secure-notes/internal/cache"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/admin/auditlist"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/admin/updateroles"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/admin/userget"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/admin/userlist"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/admin/userremove"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/file/download"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/file/filelist"
	fileremove "github.com/magabrotheeeer/secure-notes/internal/http/handlers/file/remove"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/file/upload"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/health"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/note/create"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/note/list"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/note/publiclist"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/note/read"
	noteremove "github.com/magabrotheeeer/secure-notes/internal/http/handlers/note/remove"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/note/search"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/note/update"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/user/changepassword"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/user/me"
	"github.com/magabrotheeeer/secure-notes/internal/http/handlers/user/updateprofile"
	"github.com/magabrotheeeer/secure-notes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/secure-notes/internal/lib/jwt"
	adminservice "github.com/magabrotheeeer/secure-notes/internal/services/admin"
	auditservice "github.com/magabrotheeeer/secure-notes/internal/services/audit"
	authservice "github.com/magabrotheeeer/secure-notes/internal/services/auth"
	fileservice "github.com/magabrotheeeer/secure-notes/internal/services/file"
	noteservice "github.com/magabrotheeeer/secure-notes/internal/services/note"
	userservice "github.com/magabrotheeeer/secure-notes/internal/services/user"
)

// Services объединяет бизнес-сервисы приложения для регистрации маршрутов.
type Services struct {
	Auth  *authservice.AuthService
	Note  *noteservice.NoteService
	User  *userservice.UserService
	Admin *adminservice.AdminService
	File  *fileservice.FileService
	Audit *auditservice.AuditService
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker jwt.Maker, denylist *cache.Cache, svc *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, svc.Auth, svc.Audit).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth, svc.Audit).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Чтение заметок: токен опционален, публичные заметки видны без него
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalJWTMiddleware(jwtMaker, denylist, logger))
			r.Get("/notes/public", publiclist.New(logger, svc.Note).ServeHTTP)
			r.Get("/notes/search", search.New(logger, svc.Note).ServeHTTP)
			r.Get("/notes/{id}", read.New(logger, svc.Note).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, denylist, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/logout", logout.New(logger, svc.Auth, svc.Audit).ServeHTTP)

			r.Get("/users/me", me.New(logger, svc.User).ServeHTTP)
			r.Patch("/users/me", updateprofile.New(logger, svc.User).ServeHTTP)
			r.Post("/users/me/password", changepassword.New(logger, svc.Auth, svc.Audit).ServeHTTP)

			r.Post("/notes", create.New(logger, svc.Note).ServeHTTP)
			r.Get("/notes", list.New(logger, svc.Note).ServeHTTP)
			r.Put("/notes/{id}", update.New(logger, svc.Note).ServeHTTP)
			r.Delete("/notes/{id}", noteremove.New(logger, svc.Note).ServeHTTP)

			r.Post("/files", upload.New(logger, svc.File, svc.Audit).ServeHTTP)
			r.Get("/files", filelist.New(logger, svc.File).ServeHTTP)
			r.Get("/files/{id}", download.New(logger, svc.File).ServeHTTP)
			r.Delete("/files/{id}", fileremove.New(logger, svc.File, svc.Audit).ServeHTTP)

			// Административные операции
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireAdmin(logger))
				r.Get("/admin/users", userlist.New(logger, svc.Admin).ServeHTTP)
				r.Get("/admin/users/{uid}", userget.New(logger, svc.Admin).ServeHTTP)
				r.Put("/admin/users/{uid}/roles", updateroles.New(logger, svc.Admin, svc.Audit).ServeHTTP)
				r.Delete("/admin/users/{uid}", userremove.New(logger, svc.Admin, svc.Audit).ServeHTTP)
				r.Get("/admin/audit", auditlist.New(logger, svc.Audit).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
