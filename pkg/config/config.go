package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sph_sync/models"
)

// Config — файл конфигурации сервиса: учётные данные хранилища,
// адрес источника статистики, таблица маршрутизации и политика плана.
// Таблица маршрутизации ведётся внешним инструментом, здесь только читается.
type Config struct {
	Feishu struct {
		AppID     string `yaml:"app_id"`
		AppSecret string `yaml:"app_secret"`
		BaseURL   string `yaml:"base_url"`
	} `yaml:"feishu"`

	Source struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"source"`

	Routing models.RoutingTable `yaml:"routing"`

	Sync struct {
		BatchSize    int `yaml:"batch_size"`
		BatchPauseMs int `yaml:"batch_pause_ms"`
	} `yaml:"sync"`

	Schedule models.SchedulePolicy `yaml:"schedule"`
}

// Load читает и проверяет конфигурацию из yaml-файла.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}

	if cfg.Feishu.AppID == "" || cfg.Feishu.AppSecret == "" {
		return nil, fmt.Errorf("конфигурация %s: не заданы app_id/app_secret хранилища", path)
	}
	if cfg.Feishu.BaseURL == "" {
		cfg.Feishu.BaseURL = "https://open.feishu.cn"
	}
	if cfg.Source.BaseURL == "" {
		cfg.Source.BaseURL = "http://127.0.0.1:9802"
	}
	cfg.Schedule = cfg.Schedule.WithDefaults()

	return &cfg, nil
}
