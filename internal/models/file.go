// Package models содержит метаданные загруженных файлов.
package models

import "time"

// FileMeta описывает загруженный пользователем файл.
// Сами байты хранятся на диске, в базе — только метаданные.
type FileMeta struct {
	ID               int       `json:"id"`                // Идентификатор файла
	OriginalFilename string    `json:"original_filename"` // Имя файла, присланное клиентом
	StoredFilename   string    `json:"-"`                 // Имя файла в хранилище, наружу не отдаётся
	ContentType      string    `json:"content_type"`      // MIME-тип содержимого
	Size             int64     `json:"size"`              // Размер в байтах
	StoragePath      string    `json:"-"`                 // Полный путь до файла на диске
	OwnerUID         string    `json:"owner_uid"`         // Идентификатор владельца
	CreatedAt        time.Time `json:"created_at"`        // Дата загрузки
}
