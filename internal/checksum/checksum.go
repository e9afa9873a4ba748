package checksum

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// TitleKey: SHA256 заголовка, ключ строки в хранилище (заголовок служит ключом дедупликации)
func (g *Generator) TitleKey(title string) string {
	hash := sha256.Sum256([]byte(strings.TrimSpace(title)))
	return fmt.Sprintf("%x", hash)
}

// GenerateRecordHash генерирует SHA256 хеш записи
// Формула: SHA256(title|date_label)
func (g *Generator) GenerateRecordHash(title, dateLabel string) string {
	content := fmt.Sprintf("%s|%s", title, dateLabel)
	hash := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", hash)
}
