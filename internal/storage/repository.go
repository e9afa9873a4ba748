package storage

import (
	"context"
	"time"
)

// PostRow: запись блога в виде строки таблицы
type PostRow struct {
	TitleKey    string // SHA256 заголовка
	Title       string
	DateLabel   string
	PostDate    *time.Time // nil, если метку даты не удалось разобрать
	SequenceNum int
	CheckSum    string // SHA256(title|date_label)
}

// Repository интерфейс для работы с хранилищем записей
type Repository interface {
	// EnsureSchema создаёт таблицу, если её нет
	EnsureSchema(ctx context.Context) error

	// UpsertPost сохраняет или обновляет запись, возвращает (isNew, error)
	UpsertPost(ctx context.Context, row *PostRow) (isNew bool, err error)

	// CountPosts получает количество сохранённых записей
	CountPosts(ctx context.Context) (int, error)

	Close() error
}
