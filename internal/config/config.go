package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"bridgedash/internal/dashboard"
	"bridgedash/internal/models"
	"bridgedash/internal/parser"
)

// Config holds all bridgedash configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Data    DataConfig    `yaml:"data"`
	Map     MapConfig     `yaml:"map"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DataConfig selects where the bridge table is loaded from.
type DataConfig struct {
	File   string `yaml:"file"`   // CSV path
	Source string `yaml:"source"` // csv, pocketbase
	Dir    string `yaml:"dir"`    // PocketBase data directory
}

// MapConfig configures the map view.
type MapConfig struct {
	DefaultPoints   int     `yaml:"default_points"`
	MinPoints       int     `yaml:"min_points"`
	MaxPoints       int     `yaml:"max_points"`
	Zoom            int     `yaml:"zoom"`
	RadiusMeters    float64 `yaml:"radius_meters"`
	CenterLatitude  float64 `yaml:"center_latitude"`
	CenterLongitude float64 `yaml:"center_longitude"`
	TileURL         string  `yaml:"tile_url"`
	Attribution     string  `yaml:"attribution"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	d := dashboard.DefaultOptions()
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Data: DataConfig{
			File:   parser.DefaultCSVPath,
			Source: string(models.SourceMethodCSV),
			Dir:    "./pb_data",
		},
		Map: MapConfig{
			DefaultPoints:   d.DefaultPoints,
			MinPoints:       d.MinPoints,
			MaxPoints:       d.MaxPoints,
			Zoom:            d.Zoom,
			RadiusMeters:    d.RadiusMeters,
			CenterLatitude:  d.FallbackCenter.Latitude,
			CenterLongitude: d.FallbackCenter.Longitude,
			TileURL:         d.TileURL,
			Attribution:     d.Attribution,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from a YAML file and applies environment
// overrides. An empty or missing path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		c.Data.Dir = dir
	}
	if file := os.Getenv("DATA_FILE"); file != "" {
		c.Data.File = file
	}
	if source := os.Getenv("DATA_SOURCE"); source != "" {
		c.Data.Source = source
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if err := models.ValidateSourceMethod(models.SourceMethod(c.Data.Source)); err != nil {
		return err
	}
	if p, err := strconv.Atoi(c.Server.Port); err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid port: %q", c.Server.Port)
	}
	if c.Data.Source == string(models.SourceMethodCSV) && c.Data.File == "" {
		return errors.New("data file is required for the csv source")
	}
	if c.Data.Source == string(models.SourceMethodPocketBase) && c.Data.Dir == "" {
		return errors.New("data dir is required for the pocketbase source")
	}

	m := c.Map
	if m.MinPoints < 1 || m.MaxPoints < m.MinPoints {
		return fmt.Errorf("invalid map point bounds: [%d, %d]", m.MinPoints, m.MaxPoints)
	}
	if m.DefaultPoints < m.MinPoints || m.DefaultPoints > m.MaxPoints {
		return fmt.Errorf("default map points %d outside [%d, %d]", m.DefaultPoints, m.MinPoints, m.MaxPoints)
	}
	if m.Zoom < 0 || m.Zoom > 20 {
		return fmt.Errorf("invalid map zoom: %d", m.Zoom)
	}
	if m.RadiusMeters <= 0 {
		return fmt.Errorf("invalid map radius: %v", m.RadiusMeters)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}
	return nil
}

// Dashboard converts the map settings into dashboard options.
func (c *Config) Dashboard() dashboard.Options {
	opts := dashboard.DefaultOptions()
	opts.DefaultPoints = c.Map.DefaultPoints
	opts.MinPoints = c.Map.MinPoints
	opts.MaxPoints = c.Map.MaxPoints
	opts.Zoom = c.Map.Zoom
	opts.RadiusMeters = c.Map.RadiusMeters
	opts.FallbackCenter = dashboard.LatLng{
		Latitude:  c.Map.CenterLatitude,
		Longitude: c.Map.CenterLongitude,
	}
	opts.TileURL = c.Map.TileURL
	opts.Attribution = c.Map.Attribution
	return opts
}
