package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Ops      OpsConfig      `yaml:"ops"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Admin    AdminConfig    `yaml:"admin"`
}

type ServerConfig struct {
	Address string `yaml:"address"`
	// MaxFrameBytes bounds a declared frame length; 0 means the codec default.
	MaxFrameBytes uint32 `yaml:"max_frame_bytes"`
	// RegisterGraceSeconds force-closes connections that never send a tag.
	RegisterGraceSeconds int `yaml:"register_grace_seconds"`
	MaxResultRows        int `yaml:"max_result_rows"`
}

// OpsConfig addresses the HTTP side server for health and metrics.
type OpsConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// SearchCacheTTLSeconds bounds staleness of cached flight searches.
	SearchCacheTTLSeconds int `yaml:"search_cache_ttl_seconds"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

// AdminConfig seeds a default administrator account at startup.
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Server.RegisterGraceSeconds <= 0 {
		cfg.Server.RegisterGraceSeconds = 5
	}
	if cfg.Server.MaxResultRows <= 0 {
		cfg.Server.MaxResultRows = 200
	}

	return &cfg, nil
}
