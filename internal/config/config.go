// Package config loads tool settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/seisops/availability/internal/domain"
	"github.com/spf13/viper"
)

// Config holds all settings for both subcommands, populated from a TOML file.
type Config struct {
	Log       Log       `mapstructure:"log"`
	Archive   Archive   `mapstructure:"archive"`
	Product   Product   `mapstructure:"product"`
	Compute   Compute   `mapstructure:"compute"`
	Visualise Visualise `mapstructure:"visualise"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Archive locates the miniSEED archive to scan.
type Archive struct {
	Path string `mapstructure:"path"`
}

// Product locates the availability product tree and selects its backend.
type Product struct {
	Path    string `mapstructure:"path"`
	Backend string `mapstructure:"backend"`
}

// Compute configures an archive scan.
type Compute struct {
	Stations    []string      `mapstructure:"stations"`
	Years       []int         `mapstructure:"years"`
	Channel     string        `mapstructure:"channel"`
	Workers     int           `mapstructure:"workers"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
	Kafka       Kafka         `mapstructure:"kafka"`
}

// Kafka enables publishing completed tables when Brokers is non-empty.
type Kafka struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Visualise configures chart rendering from persisted tables.
type Visualise struct {
	Stations []string `mapstructure:"stations"`
	Channel  string   `mapstructure:"channel"`
	Start    string   `mapstructure:"starttime"`
	End      string   `mapstructure:"endtime"`
	Filename string   `mapstructure:"filename"`
}

// Load reads a TOML config file, applying defaults where unset.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("product.backend", "csv")
	v.SetDefault("compute.channel", "*")
	v.SetDefault("compute.workers", 1)
	v.SetDefault("compute.read_timeout", "5m")
	v.SetDefault("visualise.filename", "availability")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// ValidateCompute checks everything the compute subcommand needs.
func (c *Config) ValidateCompute() error {
	if c.Archive.Path == "" {
		return errors.New("archive.path is required")
	}
	if c.Product.Path == "" {
		return errors.New("product.path is required")
	}
	if c.Product.Backend != "csv" && c.Product.Backend != "sqlite" {
		return fmt.Errorf("product.backend must be csv or sqlite, got %q", c.Product.Backend)
	}
	if len(c.Compute.Stations) == 0 {
		return errors.New("compute.stations is required")
	}
	for _, station := range c.Compute.Stations {
		if _, _, err := domain.ParseStationID(station); err != nil {
			return fmt.Errorf("compute.stations: %w", err)
		}
	}
	if len(c.Compute.Years) == 0 {
		return errors.New("compute.years is required")
	}
	if c.Compute.Channel == "" {
		return errors.New("compute.channel is required")
	}
	if c.Compute.Workers < 1 {
		return fmt.Errorf("compute.workers must be positive, got %d", c.Compute.Workers)
	}
	if c.Compute.ReadTimeout <= 0 {
		return fmt.Errorf("compute.read_timeout must be positive, got %s", c.Compute.ReadTimeout)
	}
	if len(c.Compute.Kafka.Brokers) > 0 && c.Compute.Kafka.Topic == "" {
		return errors.New("compute.kafka.topic is required when brokers are set")
	}
	return nil
}

// ValidateVisualise checks everything the visualise subcommand needs.
func (c *Config) ValidateVisualise() error {
	if c.Product.Path == "" {
		return errors.New("product.path is required")
	}
	if c.Product.Backend != "csv" && c.Product.Backend != "sqlite" {
		return fmt.Errorf("product.backend must be csv or sqlite, got %q", c.Product.Backend)
	}
	if len(c.Visualise.Stations) == 0 {
		return errors.New("visualise.stations is required")
	}
	for _, station := range c.Visualise.Stations {
		if _, _, err := domain.ParseStationID(station); err != nil {
			return fmt.Errorf("visualise.stations: %w", err)
		}
	}
	if c.Visualise.Channel == "" {
		return errors.New("visualise.channel is required")
	}
	if strings.TrimSpace(c.Visualise.Filename) == "" {
		return errors.New("visualise.filename is required")
	}
	if _, _, err := c.Visualise.Window(); err != nil {
		return err
	}
	return nil
}

// Window parses the configured start and end dates.
func (v *Visualise) Window() (start, end time.Time, err error) {
	start, err = time.Parse(time.DateOnly, v.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("visualise.starttime %q: want YYYY-MM-DD", v.Start)
	}
	end, err = time.Parse(time.DateOnly, v.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("visualise.endtime %q: want YYYY-MM-DD", v.End)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("visualise.endtime %s is before starttime %s", v.End, v.Start)
	}
	return start, end, nil
}
