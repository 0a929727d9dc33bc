// Package models содержит доменные структуры заметок,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Note представляет заметку пользователя.
// Поле OwnerUID неизменно после создания — владелец назначается один раз.
type Note struct {
	ID        int       `json:"id"`         // Идентификатор заметки
	Title     string    `json:"title"`      // Заголовок
	Content   string    `json:"content"`    // Текст заметки
	OwnerUID  string    `json:"owner_uid"`  // Идентификатор владельца
	Owner     string    `json:"owner"`      // Имя владельца
	IsPublic  bool      `json:"is_public"`  // Публичная заметка доступна на чтение всем
	CreatedAt time.Time `json:"created_at"` // Дата создания
	UpdatedAt time.Time `json:"updated_at"` // Дата последнего изменения
}

// DummyNote используется для приёма данных заметки из JSON-запроса,
// прежде чем конвертировать их в Note.
type DummyNote struct {
	Title    string `json:"title" validate:"required,max=200"` // Заголовок (до 200 символов)
	Content  string `json:"content"`                           // Текст заметки
	IsPublic bool   `json:"is_public"`                         // Признак публичности
}
