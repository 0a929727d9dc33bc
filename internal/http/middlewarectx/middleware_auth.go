// Package middlewarectx содержит HTTP middleware для обработки и проверки JWT токенов.
//
// JWTMiddleware проверяет наличие и валидность JWT токена в заголовке Authorization,
// сверяет его jti с deny-list отозванных токенов и в случае успеха добавляет
// в контекст имя пользователя, набор ролей и uid для дальнейшего использования
// в обработчиках.
//
// Это единственная точка входа аутентификации: ни один обработчик
// не принимает решение о подлинности токена самостоятельно.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/secure-notes/internal/authz"
	"github.com/magabrotheeeer/secure-notes/internal/http/response"
	"github.com/magabrotheeeer/secure-notes/internal/lib/jwt"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// User — ключ для имени пользователя в контексте
	User Key = "username"
	// Roles — ключ для набора ролей пользователя в контексте
	Roles Key = "roles"
	// UserUID — ключ для uid пользователя в контексте
	UserUID Key = "useruid"
)

// Denylist описывает проверку jti токена по deny-list отозванных токенов.
type Denylist interface {
	IsTokenDenied(ctx context.Context, jti string) (bool, error)
}

// Principal собирает принципала запроса из значений контекста.
// Для запроса без аутентификации возвращается анонимный принципал.
func Principal(ctx context.Context) authz.Principal {
	uid, _ := ctx.Value(UserUID).(string)
	username, _ := ctx.Value(User).(string)
	roles, _ := ctx.Value(Roles).([]string)
	if uid == "" {
		return authz.Anonymous()
	}
	return authz.Principal{
		UID:      uid,
		Username: username,
		Roles:    roles,
	}
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден и не отозван, добавляет имя пользователя, роли и uid
// в контекст запроса, иначе возвращает единый ответ 401 Unauthorized —
// до выполнения какой-либо бизнес-логики.
func JWTMiddleware(maker jwt.Maker, denylist Denylist, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			claims, ok := parseBearer(r, maker, denylist)
			if !ok {
				log.Error("missing, invalid or revoked token")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// OptionalJWTMiddleware пропускает запрос и без токена: такие запросы
// обслуживаются как анонимные (чтение публичных заметок, публичный поиск).
// Предъявленный при этом невалидный токен так же даёт анонимного принципала,
// а не ошибку — содержимое ответа не различает причины.
func OptionalJWTMiddleware(maker jwt.Maker, denylist Denylist, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.OptionalJWTMiddleware"

			claims, ok := parseBearer(r, maker, denylist)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			log.Debug("authenticated optional request",
				slog.String("op", op),
				slog.String("username", claims.Username))
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin возвращает middleware, пропускающий только принципалов с ролью admin.
// Административная поверхность структурна: отказ здесь — 403, существования
// конкретных ресурсов он не раскрывает.
func RequireAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireAdmin"

			p := Principal(r.Context())
			if !authz.CanManageUsers(p) {
				log.Error("admin access denied",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("username", p.Username))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseBearer(r *http.Request, maker jwt.Maker, denylist Denylist) (*jwt.CustomClaims, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, false
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := maker.ParseToken(tokenStr)
	if err != nil {
		return nil, false
	}
	denied, err := denylist.IsTokenDenied(r.Context(), claims.ID)
	if err != nil || denied {
		return nil, false
	}
	return claims, true
}

func withClaims(ctx context.Context, claims *jwt.CustomClaims) context.Context {
	ctx = context.WithValue(ctx, User, claims.Username)
	ctx = context.WithValue(ctx, Roles, claims.Roles)
	return context.WithValue(ctx, UserUID, claims.UserUID)
}
