package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "PYBLOG_"

// LoadConfig читает YAML поверх Default(), затем .env и переменные PYBLOG_*.
// Отсутствующий файл конфига не ошибка: работаем на значениях по умолчанию.
func LoadConfig(filePath string) (*Config, error) {
	cfg := Default()

	if filePath != "" {
		if err := decodeFile(filePath, &cfg); err != nil {
			return nil, err
		}
		cfg.path = filePath
	}

	// .env необязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &cfg, nil
}

func decodeFile(filePath string, cfg *Config) error {
	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("Config file %s not found, using defaults", filePath)
			return nil
		}
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			// Логируем ошибку, но не возвращаем, иначе перезапишем основную ошибку
			log.Printf("Warning: failed to close config file: %v", closeErr)
		}
	}()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v, ok := lookupEnv("BROWSER_ENGINE"); ok {
		cfg.Browser.Engine = v
	}
	if v, ok := lookupEnv("CHROME_PATH"); ok {
		cfg.Browser.ChromePath = v
	}
	if v, ok := lookupEnv("HEADLESS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sHEADLESS: %w", envPrefix, err)
		}
		cfg.Browser.Headless = b
	}
	if v, ok := lookupEnv("MAX_PAGES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_PAGES: %w", envPrefix, err)
		}
		cfg.Pagination.MaxPages = n
	}
	if v, ok := lookupEnv("WAIT_TIMEOUT_S"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sWAIT_TIMEOUT_S: %w", envPrefix, err)
		}
		cfg.Navigation.WaitTimeoutS = n
	}
	if v, ok := lookupEnv("CSV_PATH"); ok {
		cfg.Output.CSVPath = v
	}
	if v, ok := lookupEnv("TRANSFER_DIR"); ok {
		cfg.Output.TransferDir = v
	}
	if v, ok := lookupEnv("STORAGE_DSN"); ok {
		cfg.Storage.DSN = v
		cfg.Storage.Enabled = true
	}
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		cfg.Observability.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookupEnv("LOG_PATH"); ok {
		cfg.Observability.LogPath = v
	}
	return nil
}

// lookupEnv: пустое значение равносильно отсутствию переменной
func lookupEnv(name string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(envPrefix + name))
	return v, v != ""
}
