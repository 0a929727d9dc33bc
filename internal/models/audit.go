// Package models содержит структуру записи журнала аудита.
package models

import "time"

// Уровни важности записей аудита.
const (
	// AuditInfo — обычное событие (успешный вход, загрузка файла).
	AuditInfo = "INFO"
	// AuditWarning — подозрительное событие (неудачный вход).
	AuditWarning = "WARNING"
	// AuditCritical — критичное событие (изменение ролей, удаление пользователя).
	AuditCritical = "CRITICAL"
)

// AuditEntry представляет одну запись журнала безопасности.
// Запись создаётся сервисами и сохраняется в хранилище,
// дополнительно публикуется во внешнюю очередь.
type AuditEntry struct {
	ID         int       `json:"id"`          // Идентификатор записи
	Action     string    `json:"action"`      // Действие (login, register, update_roles и т.д.)
	EntityType string    `json:"entity_type"` // Тип сущности (user, note, file)
	EntityID   string    `json:"entity_id"`   // Идентификатор сущности
	Username   string    `json:"username"`    // Имя пользователя, выполнившего действие
	Details    string    `json:"details"`     // Дополнительное описание события
	IPAddress  string    `json:"ip_address"`  // Адрес, с которого пришёл запрос
	Level      string    `json:"level"`       // Уровень важности: INFO, WARNING, CRITICAL
	CreatedAt  time.Time `json:"created_at"`  // Время события
}
