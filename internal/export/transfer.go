package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Transfer копирует артефакты прогона (CSV, скриншот) в каталог выдачи.
// Пустой dir: файлы остаются на месте.
type Transfer struct {
	dir string
}

func NewTransfer(dir string) *Transfer {
	return &Transfer{dir: dir}
}

func (t *Transfer) Enabled() bool {
	return t != nil && t.dir != ""
}

// Push копирует файлы и возвращает пути копий
func (t *Transfer) Push(paths ...string) ([]string, error) {
	if !t.Enabled() {
		return nil, nil
	}
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create transfer dir: %w", err)
	}

	var copied []string
	for _, src := range paths {
		dst := filepath.Join(t.dir, filepath.Base(src))
		same, err := sameFile(src, dst)
		if err != nil {
			return copied, fmt.Errorf("failed to transfer %s: %w", src, err)
		}
		// Файл уже лежит в каталоге выдачи; копия поверх себя обнулила бы его
		if same {
			copied = append(copied, dst)
			continue
		}
		if err := copyFile(src, dst); err != nil {
			return copied, fmt.Errorf("failed to transfer %s: %w", src, err)
		}
		copied = append(copied, dst)
	}
	return copied, nil
}

// sameFile: src и dst указывают на один файл (в т.ч. через разные относительные пути)
func sameFile(src, dst string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, err
	}
	dstInfo, err := os.Stat(dst)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return os.SameFile(srcInfo, dstInfo), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
