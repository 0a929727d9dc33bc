// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// CustomClaims расширяет стандартные claims JWT, добавляя username, набор ролей
// и uid пользователя. Набор ролей — снимок на момент входа: роль, отозванная
// в середине сессии, остаётся в токене до истечения его срока.
//
// Методы GenerateToken и ParseToken реализуют создание и валидацию JWT токена с заданными claims.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken возвращается при любой причине отказа: битая структура,
// неверная подпись, истёкший срок. Вызывающий не может отличить одну причину
// от другой по содержимому ошибки.
var ErrInvalidToken = errors.New("invalid token")

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	Username             string   `json:"username"` // Имя пользователя
	Roles                []string `json:"roles"`    // Набор ролей пользователя на момент входа
	UserUID              string   `json:"useruid"`  // Идентификатор пользователя
	jwt.RegisteredClaims          // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt, ID и пр.)
}

// GenerateToken создает JWT токен с заданными username, ролями и uid,
// подписывая его секретным ключом.
//
// Время жизни токена определяется полем tokenTTL. Поле ID (jti) заполняется
// случайным uuid — по нему токен можно поместить в deny-list при выходе.
func (j *MakerImpl) GenerateToken(username string, roles []string, userUID string) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		Username: username,
		Roles:    roles,
		UserUID:  userUID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken парсит JWT токен, проверяет его подпись и срок действия,
// возвращает CustomClaims с данными, если токен корректен.
//
// Порядок проверки: структура, подпись, срок. Любой отказ сворачивается
// в ErrInvalidToken, чтобы не давать оракул злоумышленнику.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{},
		func(_ *jwt.Token) (any, error) {
			return []byte(j.secretKey), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
