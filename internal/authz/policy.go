// Package authz реализует политику владения и ролевого доступа.
//
// Политика — единственное место, где принимается решение "можно ли принципалу P
// выполнить операцию O над ресурсом R". Правила:
//   - публичная заметка читается любым принципалом, включая анонимного;
//   - чтение, изменение и удаление приватного ресурса разрешено только владельцу —
//     роль admin владение не обходит;
//   - административные операции (список пользователей, смена ролей, отключение
//     учётной записи) разрешены только роли admin.
package authz

import (
	"slices"

	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// Principal описывает аутентифицированную сущность запроса.
// Нулевое значение — анонимный принципал.
type Principal struct {
	UID      string   // Идентификатор пользователя, пустой у анонима
	Username string   // Имя пользователя
	Roles    []string // Снимок ролей на момент выдачи токена
}

// Anonymous возвращает анонимного принципала.
func Anonymous() Principal {
	return Principal{}
}

// IsAnonymous сообщает, представлен ли запрос без аутентификации.
func (p Principal) IsAnonymous() bool {
	return p.UID == ""
}

// HasRole проверяет наличие роли в наборе принципала.
func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

// IsAdmin сообщает, входит ли admin в набор ролей принципала.
func (p Principal) IsAdmin() bool {
	return p.HasRole(models.RoleAdmin)
}

// CanReadNote разрешает чтение публичной заметки любому принципалу,
// приватной — только владельцу.
func CanReadNote(p Principal, note *models.Note) bool {
	if note.IsPublic {
		return true
	}
	return !p.IsAnonymous() && p.UID == note.OwnerUID
}

// CanMutateNote разрешает изменение и удаление заметки только владельцу.
// Публичность заметки на запись не влияет.
func CanMutateNote(p Principal, note *models.Note) bool {
	return !p.IsAnonymous() && p.UID == note.OwnerUID
}

// CanReadFile разрешает чтение файла только владельцу.
func CanReadFile(p Principal, file *models.FileMeta) bool {
	return !p.IsAnonymous() && p.UID == file.OwnerUID
}

// CanMutateFile разрешает удаление файла только владельцу.
func CanMutateFile(p Principal, file *models.FileMeta) bool {
	return !p.IsAnonymous() && p.UID == file.OwnerUID
}

// CanManageUsers разрешает административные операции над пользователями
// только принципалу с ролью admin.
func CanManageUsers(p Principal) bool {
	return p.IsAdmin()
}
