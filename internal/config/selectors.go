package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"pyblog-news-parser/internal/scraper"
)

// LoadSelectors загружает профили селекторов из YAML файла поверх встроенных
func LoadSelectors(filePath string) (*scraper.Profiles, error) {
	if filePath == "" {
		return nil, fmt.Errorf("selectors file path is empty")
	}

	// Проверяем существование файла
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("selectors file not found: %s: %w", filePath, err)
	}

	// Открываем файл
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open selectors file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close selectors file: %v\n", closeErr)
		}
	}()

	// Парсим YAML
	profiles := scraper.DefaultProfiles()
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&profiles); err != nil {
		return nil, fmt.Errorf("failed to parse selectors YAML: %w", err)
	}

	// Валидируем оба профиля
	if err := validateProfile("desktop", &profiles.Desktop); err != nil {
		return nil, err
	}
	if err := validateProfile("mobile", &profiles.Mobile); err != nil {
		return nil, err
	}

	return &profiles, nil
}

// LoadProfiles возвращает профили из selectors_file или встроенные
func (c *Config) LoadProfiles() (*scraper.Profiles, error) {
	if c.SelectorsFile == "" {
		profiles := scraper.DefaultProfiles()
		return &profiles, nil
	}

	filePath := c.SelectorsFile
	// Если путь относительный, делаем его относительно файла конфига
	if !filepath.IsAbs(filePath) {
		baseDir := "configs"
		if c.path != "" {
			baseDir = filepath.Dir(c.path)
		}
		filePath = filepath.Join(baseDir, filePath)
	}

	return LoadSelectors(filePath)
}

// validateProfile проверяет минимальный набор селекторов
func validateProfile(name string, p *scraper.Profile) error {
	if p.ListContainer == "" {
		return fmt.Errorf("%s.list_container is required", name)
	}
	if p.DateGroups == "" {
		return fmt.Errorf("%s.date_groups is required", name)
	}
	if p.DateLabel == "" {
		return fmt.Errorf("%s.date_label is required", name)
	}
	if p.Entries == "" {
		return fmt.Errorf("%s.entries is required", name)
	}
	if p.Title == "" {
		return fmt.Errorf("%s.title is required", name)
	}
	if err := p.NextPage.Validate(); err != nil {
		return fmt.Errorf("%s.next_page: %w", name, err)
	}

	return nil
}
