package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/seisops/availability/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const fullConfig = `
[log]
level = "debug"
format = "json"

[archive]
path = "/data/archive"

[product]
path = "/data/products"
backend = "sqlite"

[compute]
stations = ["NW.STA1", "NW.STA2"]
years = [2023, 2024]
channel = "HH?"
workers = 4
read_timeout = "2m"
metrics_addr = ":9090"

[compute.kafka]
brokers = ["localhost:9092"]
topic = "availability-tables"

[visualise]
stations = ["NW.STA1"]
channel = "HHZ"
starttime = "2023-01-01"
endtime = "2024-12-31"
filename = "network-availability"
`

func TestLoad_FullConfig(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/data/archive", cfg.Archive.Path)
	assert.Equal(t, "sqlite", cfg.Product.Backend)
	assert.Equal(t, []string{"NW.STA1", "NW.STA2"}, cfg.Compute.Stations)
	assert.Equal(t, []int{2023, 2024}, cfg.Compute.Years)
	assert.Equal(t, "HH?", cfg.Compute.Channel)
	assert.Equal(t, 4, cfg.Compute.Workers)
	assert.Equal(t, 2*time.Minute, cfg.Compute.ReadTimeout)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Compute.Kafka.Brokers)
	assert.Equal(t, "network-availability", cfg.Visualise.Filename)

	require.NoError(t, cfg.ValidateCompute())
	require.NoError(t, cfg.ValidateVisualise())

	start, end, err := cfg.Visualise.Window()
	require.NoError(t, err)
	assert.Equal(t, 2023, start.Year())
	assert.Equal(t, 2024, end.Year())
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
[archive]
path = "/data/archive"

[product]
path = "/data/products"

[compute]
stations = ["NW.STA1"]
years = [2024]
`))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "csv", cfg.Product.Backend)
	assert.Equal(t, "*", cfg.Compute.Channel)
	assert.Equal(t, 1, cfg.Compute.Workers)
	assert.Equal(t, 5*time.Minute, cfg.Compute.ReadTimeout)
	assert.Equal(t, "availability", cfg.Visualise.Filename)
	require.NoError(t, cfg.ValidateCompute())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestValidateCompute_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "missing archive path",
			mutate:  func(c *config.Config) { c.Archive.Path = "" },
			wantErr: "archive.path",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *config.Config) { c.Product.Backend = "postgres" },
			wantErr: "product.backend",
		},
		{
			name:    "no stations",
			mutate:  func(c *config.Config) { c.Compute.Stations = nil },
			wantErr: "compute.stations",
		},
		{
			name:    "malformed station id",
			mutate:  func(c *config.Config) { c.Compute.Stations = []string{"STA1"} },
			wantErr: "compute.stations",
		},
		{
			name:    "no years",
			mutate:  func(c *config.Config) { c.Compute.Years = nil },
			wantErr: "compute.years",
		},
		{
			name:    "zero workers",
			mutate:  func(c *config.Config) { c.Compute.Workers = 0 },
			wantErr: "compute.workers",
		},
		{
			name:    "kafka brokers without topic",
			mutate:  func(c *config.Config) { c.Compute.Kafka.Topic = "" },
			wantErr: "compute.kafka.topic",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(writeConfig(t, fullConfig))
			require.NoError(t, err)
			tt.mutate(cfg)
			err = cfg.ValidateCompute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateVisualise_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "no stations",
			mutate:  func(c *config.Config) { c.Visualise.Stations = nil },
			wantErr: "visualise.stations",
		},
		{
			name:    "bad start date",
			mutate:  func(c *config.Config) { c.Visualise.Start = "01/01/2023" },
			wantErr: "visualise.starttime",
		},
		{
			name:    "end before start",
			mutate:  func(c *config.Config) { c.Visualise.End = "2022-01-01" },
			wantErr: "before starttime",
		},
		{
			name:    "missing channel",
			mutate:  func(c *config.Config) { c.Visualise.Channel = "" },
			wantErr: "visualise.channel",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(writeConfig(t, fullConfig))
			require.NoError(t, err)
			tt.mutate(cfg)
			err = cfg.ValidateVisualise()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
