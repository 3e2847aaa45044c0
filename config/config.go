// Package config loads and validates ftpipe's runtime configuration using
// viper, with mapstructure-tagged defaults for both roles.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/ftpipe-project/ftpipe/internal/conn"
)

// DefaultPort is the default TCP port for both the receiver listener and
// the sender's dial target.
const DefaultPort = 8080

// ReceiverConfig holds the settings a receiver process needs.
type ReceiverConfig struct {
	// ListenAddress is the address to listen on, e.g. ":8080".
	ListenAddress string `mapstructure:"listen_address"`
	// DestinationDir is the base directory every received file is written
	// under.
	DestinationDir string `mapstructure:"destination_dir"`
	// WatchDestination enables the fsnotify-backed directory watcher
	// (internal/watch) that logs entries created directly under the
	// destination directory.
	WatchDestination bool `mapstructure:"watch_destination"`
}

// SenderConfig holds the settings a sender process needs.
type SenderConfig struct {
	// ServerAddress is the host:port to dial.
	ServerAddress string `mapstructure:"server_address"`
	// SourcePath is the file or directory to send.
	SourcePath string `mapstructure:"source_path"`
}

// Config is the complete, validated configuration for either role.
type Config struct {
	Receiver ReceiverConfig `mapstructure:"receiver"`
	Sender   SenderConfig   `mapstructure:"sender"`

	// CongestionThresholdBytes overrides the connection engine's
	// backpressure threshold. Zero means use the package default.
	CongestionThresholdBytes int64 `mapstructure:"congestion_threshold_bytes"`

	// ReadBufferBytes overrides the connection engine's fixed read buffer
	// size. Zero means use the package default.
	ReadBufferBytes int `mapstructure:"read_buffer_bytes"`
}

// ConnOptions builds the conn.Options this configuration describes, for
// passing into conn.New (directly, or through session.Listen/Accept).
func (c *Config) ConnOptions() conn.Options {
	return conn.Options{
		CongestionThreshold: c.CongestionThresholdBytes,
		ReadBufferSize:      c.ReadBufferBytes,
	}
}

// Validate performs basic sanity checks beyond what viper's unmarshal
// already guarantees.
func (c *Config) Validate() error {
	if c.CongestionThresholdBytes < 0 {
		return fmt.Errorf("congestion_threshold_bytes must not be negative")
	}
	if c.ReadBufferBytes < 0 {
		return fmt.Errorf("read_buffer_bytes must not be negative")
	}
	return nil
}

// Load reads configuration from configPath (if non-empty) and the FTPIPE_*
// environment, falling back to built-in defaults for anything unset.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("receiver.listen_address", fmt.Sprintf(":%d", DefaultPort))
	v.SetDefault("receiver.destination_dir", ".")
	v.SetDefault("receiver.watch_destination", false)
	v.SetDefault("sender.server_address", fmt.Sprintf("127.0.0.1:%d", DefaultPort))
	v.SetDefault("congestion_threshold_bytes", int64(1<<20))
	v.SetDefault("read_buffer_bytes", 8*1024)

	v.SetEnvPrefix("FTPIPE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}

	return &cfg, nil
}
