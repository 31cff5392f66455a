package tui

import (
	"time"

	"github.com/Veraticus/clash-cost/internal/tui/themes"
)

// Config holds monitor configuration.
type Config struct {
	Theme        themes.Theme
	PollInterval time.Duration
	Width        int
	HistorySize  int
	ShowHelp     bool
}

// Option is a functional option for configuring the monitor.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:        themes.Default,
		PollInterval: 100 * time.Millisecond,
		Width:        80,
		HistorySize:  8,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithPollInterval sets how often the run status is sampled.
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.PollInterval = d
		}
	}
}

// WithWidth sets the initial terminal width.
func WithWidth(width int) Option {
	return func(c *Config) {
		c.Width = width
	}
}

// WithHistorySize sets how many processed candidates are listed.
func WithHistorySize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.HistorySize = n
		}
	}
}
