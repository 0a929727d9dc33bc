// Package password реализует функции для безопасного хеширования и проверки паролей.
//
// GetHash создает bcrypt-хеш пароля для безопасного хранения.
// CompareHash сравнивает исходный bcrypt-хеш с введённым паролем, проверяя их соответствие.
// DummyCompare выполняет холостую проверку, чтобы выровнять время ответа
// при попытке входа под несуществующим пользователем.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash — заранее вычисленный хэш случайной строки.
// Используется только для выравнивания времени в DummyCompare.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// GetHash принимает пароль пользователя и стоимость bcrypt,
// возвращает bcrypt‑хэш пароля.
//
// Хэш недетерминирован: соль генерируется заново при каждом вызове,
// одинаковые пароли дают разные хэши.
func GetHash(password string, cost int) (string, error) {
	const op = "password.GetHash"
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// CompareHash сравнивает bcrypt‑хэш с введённым паролем.
//
// Возвращает nil, если пароль соответствует хэшу, иначе — ошибку.
// Повреждённый или пустой хэш даёт ошибку, а не совпадение.
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DummyCompare выполняет одну проверку bcrypt против фиксированного хэша.
//
// Вызывается, когда пользователь не найден: путь "нет такого пользователя"
// тратит столько же времени, сколько путь "неверный пароль".
func DummyCompare(externalPassword string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(externalPassword))
}
