package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds server configuration values.
type Config struct {
	Host              string        `mapstructure:"host" yaml:"host"`
	Port              int           `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format" validate:"oneof=console json"`

	// Chat engine.
	HistoryLimit           int           `mapstructure:"history_limit" yaml:"history_limit" validate:"min=1"`
	RateLimitMax           int           `mapstructure:"rate_limit_max" yaml:"rate_limit_max" validate:"min=1"`
	RateLimitWindow        time.Duration `mapstructure:"rate_limit_window" yaml:"rate_limit_window" validate:"gt=0"`
	UniqueNameOnRoomChange bool          `mapstructure:"unique_name_on_room_change" yaml:"unique_name_on_room_change"`

	// WebSocket transport.
	MaxMessageBytes int64   `mapstructure:"max_message_bytes" yaml:"max_message_bytes" validate:"min=1024"`
	ClientBuffer    int     `mapstructure:"client_buffer" yaml:"client_buffer" validate:"min=1"`
	FrameRate       float64 `mapstructure:"frame_rate" yaml:"frame_rate" validate:"min=0"`
	FrameBurst      int     `mapstructure:"frame_burst" yaml:"frame_burst" validate:"min=0"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Port:              3000,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",
		HistoryLimit:      100,
		RateLimitMax:      10,
		RateLimitWindow:   10 * time.Second,
		MaxMessageBytes:   64 << 10,
		ClientBuffer:      64,
		FrameRate:         20,
		FrameBurst:        40,
	}
}

// Addr is the listen address built from Host and Port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Host != "" {
		c.Host = other.Host
	}
	if other.Port != 0 {
		c.Port = other.Port
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
}
