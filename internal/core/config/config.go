// Package config handles configuration loading and validation for marksync.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/marksync/internal/core/history"
	"github.com/colonyops/marksync/internal/core/markdown"
	"github.com/colonyops/marksync/internal/core/styles"
	"github.com/colonyops/marksync/internal/core/tree"
)

// Config holds the application configuration.
type Config struct {
	Sync    SyncConfig    `yaml:"sync"`
	History HistoryConfig `yaml:"history"`
	Due     DueConfig     `yaml:"due"`
	Parser  ParserConfig  `yaml:"parser"`

	// Theme names the color theme used for terminal output.
	Theme string `yaml:"theme"`
}

// SyncConfig controls markdown/tree propagation.
type SyncConfig struct {
	// Debounce is the coalescing window applied to both propagation directions.
	Debounce time.Duration `yaml:"debounce"`
}

// HistoryConfig controls the per-list undo stack.
type HistoryConfig struct {
	MaxEntries int `yaml:"max_entries"`
}

// DueConfig controls due-date bucketing.
type DueConfig struct {
	// WeekHorizonDays is the last day offset from today counted as "this week".
	WeekHorizonDays int `yaml:"week_horizon_days"`
}

// ParserConfig controls markdown parsing.
type ParserConfig struct {
	// ClampHeaderLevels clamps "#" and "##" headers to level 0. When false the
	// raw negative levels are kept for compatibility with older documents.
	ClampHeaderLevels bool `yaml:"clamp_header_levels"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Sync: SyncConfig{
			Debounce: 300 * time.Millisecond,
		},
		History: HistoryConfig{
			MaxEntries: history.DefaultMaxEntries,
		},
		Due: DueConfig{
			WeekHorizonDays: tree.DefaultWeekHorizon,
		},
		Parser: ParserConfig{
			ClampHeaderLevels: true,
		},
		Theme: styles.DefaultTheme,
	}
}

// Load reads configuration from the given path.
// If configPath is empty or doesn't exist, returns defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
			// not found is fine, using defaults
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// MarkdownParser returns the markdown parser described by the configuration.
func (c *Config) MarkdownParser() markdown.Parser {
	return markdown.Parser{ClampHeaderLevels: c.Parser.ClampHeaderLevels}
}
