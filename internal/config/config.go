package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// Config конфигурация сервиса, загружается из config.toml
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Parking   ParkingConfig   `toml:"parking"`
	Artifacts ArtifactsConfig `toml:"artifacts"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN строка подключения к базе данных
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus-метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

// ParkingConfig бизнес-параметры парковки
type ParkingConfig struct {
	TotalSlots           int     `toml:"total_slots"`
	GraceMinutes         int     `toml:"grace_minutes"`
	MaxBookablePercent   int     `toml:"max_bookable_percent"`
	MaxOccupancyPercent  int     `toml:"max_occupancy_percent"`
	BaseFee              float64 `toml:"base_fee"`
	HourlyFee            float64 `toml:"hourly_fee"`
	EntryFee             float64 `toml:"entry_fee"`
	MetricsCacheSeconds  int     `toml:"metrics_cache_seconds"`
	SweepIntervalSeconds int     `toml:"sweep_interval_seconds"`
}

// ArtifactsConfig настройки генерации артефактов бронирования (QR, PDF)
type ArtifactsConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Load загружает конфигурацию из toml-файла и заполняет дефолты
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Parking.TotalSlots == 0 {
		c.Parking.TotalSlots = domain.DefaultTotalSlots
	}
	if c.Parking.GraceMinutes == 0 {
		c.Parking.GraceMinutes = domain.DefaultGraceMinutes
	}
	if c.Parking.MaxBookablePercent == 0 {
		c.Parking.MaxBookablePercent = domain.DefaultMaxBookablePercent
	}
	if c.Parking.MaxOccupancyPercent == 0 {
		c.Parking.MaxOccupancyPercent = domain.DefaultMaxOccupancyPercent
	}
	if c.Parking.BaseFee == 0 {
		c.Parking.BaseFee = domain.DefaultBaseFee
	}
	if c.Parking.HourlyFee == 0 {
		c.Parking.HourlyFee = domain.DefaultHourlyFee
	}
	if c.Parking.EntryFee == 0 {
		c.Parking.EntryFee = domain.DefaultEntryFee
	}
	if c.Parking.MetricsCacheSeconds == 0 {
		c.Parking.MetricsCacheSeconds = domain.DefaultMetricsCacheSeconds
	}
	if c.Parking.SweepIntervalSeconds == 0 {
		c.Parking.SweepIntervalSeconds = 60
	}
}

func (c *Config) validate() error {
	if c.Server.HTTPPort <= 0 {
		return fmt.Errorf("config: server.http_port must be positive")
	}
	if c.Parking.TotalSlots <= 0 {
		return fmt.Errorf("config: parking.total_slots must be positive")
	}
	if c.Parking.MaxBookablePercent < 0 || c.Parking.MaxBookablePercent > 100 {
		return fmt.Errorf("config: parking.max_bookable_percent must be within [0, 100]")
	}
	if c.Parking.MaxOccupancyPercent < 0 || c.Parking.MaxOccupancyPercent > 100 {
		return fmt.Errorf("config: parking.max_occupancy_percent must be within [0, 100]")
	}
	return nil
}
