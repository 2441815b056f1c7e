// Package config loads mockingbird settings from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"mockingbird/internal/domain"
	"mockingbird/internal/export"
	"mockingbird/internal/grid"
	"mockingbird/internal/journey"
	"mockingbird/internal/storage"
	"mockingbird/internal/workspace"
)

// Config holds all mockingbird configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Grid    GridConfig    `yaml:"grid"`
	Journey JourneyConfig `yaml:"journey"`
	History HistoryConfig `yaml:"history"`
	Logging LoggingConfig `yaml:"logging"`
	MCP     MCPConfig     `yaml:"mcp"`
	Export  ExportConfig  `yaml:"export"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver   string `yaml:"driver"`             // sqlite, postgres, mysql, mongodb
	DSN      string `yaml:"dsn"`                // file path for sqlite
	Database string `yaml:"database,omitempty"` // mongodb only
}

// GridConfig configures new designs and the resize gesture.
type GridConfig struct {
	Rows     int     `yaml:"rows"`
	Cols     int     `yaml:"cols"`
	RowPitch float64 `yaml:"row_pitch"`
	ColPitch float64 `yaml:"col_pitch"`
	// Strict rejects moves and resizes whose whole footprint would leave
	// the grid or overlap another component.
	Strict bool `yaml:"strict"`
}

type JourneyConfig struct {
	Spacing    float64 `yaml:"spacing"`
	OriginX    float64 `yaml:"origin_x"`
	OriginY    float64 `yaml:"origin_y"`
	Completion string  `yaml:"completion"` // page or component
	EdgeStyle  string  `yaml:"edge_style"` // curved or orthogonal
}

type HistoryConfig struct {
	Limit int `yaml:"limit"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

type MCPConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type ExportConfig struct {
	Format string `yaml:"format"` // json or yaml
	Scope  string `yaml:"scope"`  // active or all
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver: storage.DriverSQLite,
			DSN:    DefaultDBPath(),
		},
		Grid: GridConfig{
			Rows:     grid.DefaultRows,
			Cols:     grid.DefaultCols,
			RowPitch: grid.DefaultRowPitch,
			ColPitch: grid.DefaultColPitch,
		},
		Journey: JourneyConfig{
			Spacing:    journey.DefaultNodeSpacing,
			OriginX:    journey.DefaultOrigin.X,
			OriginY:    journey.DefaultOrigin.Y,
			Completion: string(journey.CompleteOnPage),
			EdgeStyle:  string(journey.EdgeCurved),
		},
		History: HistoryConfig{Limit: storage.DefaultHistoryLimit},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		MCP:     MCPConfig{Name: "mockingbird", Version: "1.0.0"},
		Export:  ExportConfig{Format: string(export.FormatJSON), Scope: string(export.ScopeActive)},
	}
}

// DefaultPath is ~/.config/mockingbird/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "mockingbird", "config.yaml")
}

// DefaultDBPath is ~/.local/share/mockingbird/mockingbird.db.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mockingbird.db"
	}
	return filepath.Join(home, ".local", "share", "mockingbird", "mockingbird.db")
}

// Load reads the config at path. A missing file yields the defaults.
// Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MOCKINGBIRD_DB_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("MOCKINGBIRD_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("MOCKINGBIRD_DB_NAME"); v != "" {
		c.Storage.Database = v
	}
	if v := os.Getenv("MOCKINGBIRD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case storage.DriverSQLite, storage.DriverPostgres, storage.DriverMySQL, storage.DriverMongo:
	default:
		return fmt.Errorf("storage.driver: unsupported driver %q", c.Storage.Driver)
	}
	if c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn is required")
	}
	if c.Grid.Rows < 1 || c.Grid.Cols < 1 {
		return fmt.Errorf("grid: rows and cols must be at least 1")
	}
	if c.Grid.RowPitch <= 0 || c.Grid.ColPitch <= 0 {
		return fmt.Errorf("grid: pitch must be positive")
	}
	if c.Journey.Spacing <= 0 {
		return fmt.Errorf("journey.spacing must be positive")
	}
	if _, err := journey.ParseCompletionMode(c.Journey.Completion); err != nil {
		return fmt.Errorf("journey.completion: %w", err)
	}
	if _, err := journey.ParseEdgeStyle(c.Journey.EdgeStyle); err != nil {
		return fmt.Errorf("journey.edge_style: %w", err)
	}
	if c.History.Limit < 1 {
		return fmt.Errorf("history.limit must be at least 1")
	}
	if _, err := export.ParseFormat(c.Export.Format); err != nil {
		return fmt.Errorf("export.format: %w", err)
	}
	if _, err := export.ParseScope(c.Export.Scope); err != nil {
		return fmt.Errorf("export.scope: %w", err)
	}
	return nil
}

// WorkspaceOptions translates the grid and journey sections.
func (c *Config) WorkspaceOptions() workspace.Options {
	mode, _ := journey.ParseCompletionMode(c.Journey.Completion)
	return workspace.Options{
		Grid:     domain.GridSize{Rows: c.Grid.Rows, Cols: c.Grid.Cols},
		Strict:   c.Grid.Strict,
		RowPitch: c.Grid.RowPitch,
		ColPitch: c.Grid.ColPitch,
		Placement: journey.Placement{
			Origin:  domain.Point{X: c.Journey.OriginX, Y: c.Journey.OriginY},
			Spacing: c.Journey.Spacing,
		},
		Completion: mode,
	}
}

// StorageOptions translates the storage and history sections.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:       c.Storage.Driver,
		DSN:          c.Storage.DSN,
		Database:     c.Storage.Database,
		HistoryLimit: c.History.Limit,
	}
}

// EdgeStyle returns the configured edge style, curved when unset or unknown.
func (c *Config) EdgeStyle() journey.EdgeStyle {
	s, err := journey.ParseEdgeStyle(c.Journey.EdgeStyle)
	if err != nil {
		return journey.EdgeCurved
	}
	return s
}
