// Package config конфигурация сервера фикстур.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kdv2001/apiMock/internal/domain"
	"github.com/kdv2001/apiMock/internal/pkg/logger"
)

// Config структура файла конфигурации
type Config struct {
	Address string `yaml:"address"`
	// Upstream адрес настоящего API; пустое значение отключает проксирование.
	Upstream string `yaml:"upstream"`
	// FixturesDir каталог с фикстурами для хранилища в памяти.
	FixturesDir string `yaml:"fixturesDir"`
	// DatabaseDSN строка подключения к postgres; если задана, фикстуры хранятся в БД.
	DatabaseDSN string `yaml:"databaseDSN"`

	Log     logger.Config       `yaml:"log"`
	APIMock domain.ModuleConfig `yaml:"apiMock"`
}

// NewConfig создает конфигурацию по умолчанию
func NewConfig() *Config {
	return &Config{
		Address: ":8080",
		Log: logger.Config{
			Level: "info",
		},
		APIMock: domain.NewModuleConfig(),
	}
}

// Load читает YAML файл поверх значений по умолчанию.
func Load(path string) (*Config, error) {
	cfg := NewConfig()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err = yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.APIMock = cfg.APIMock.WithDefaults()

	return cfg, nil
}
