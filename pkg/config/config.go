// Package config loads the settings of a token repository: where the
// Redis/Valkey store lives, how to authenticate against it, and how keys
// and values are encoded.
package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	EnvPrefix = "QTOKEN"

	CodecMsgpack = "msgpack"
	CodecJSON    = "json"

	DefaultAddr       = "localhost:6379"
	DefaultTimeout    = 2 * time.Second
	DefaultKeyPrefix  = "qtoken:"
	DefaultListenAddr = ":8080"
)

// Config is shared by the environment and file loaders. The envconfig tags
// are resolved under EnvPrefix, the mapstructure tags are the file keys.
type Config struct {
	RedisAddrs      []string      `envconfig:"REDIS_ADDRS" default:"localhost:6379" mapstructure:"redis_addrs"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD" mapstructure:"redis_password"`
	RedisDB         int           `envconfig:"REDIS_DB" default:"0" mapstructure:"redis_db"`
	RedisTimeout    time.Duration `envconfig:"REDIS_TIMEOUT" default:"2s" mapstructure:"redis_timeout"`
	RedisMasterName string        `envconfig:"REDIS_MASTER_NAME" mapstructure:"redis_master_name"`
	UseKeyring      bool          `envconfig:"REDIS_PASSWORD_KEYRING" default:"false" mapstructure:"redis_password_keyring"`
	KeyPrefix       string        `envconfig:"KEY_PREFIX" default:"qtoken:" mapstructure:"key_prefix"`
	Codec           string        `envconfig:"CODEC" default:"msgpack" mapstructure:"codec"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info" mapstructure:"log_level"`
	ListenAddr      string        `envconfig:"LISTEN_ADDR" default:":8080" mapstructure:"listen_addr"`
}

// Sentinel reports whether the configuration targets a sentinel-managed
// primary rather than a single node.
func (c *Config) Sentinel() bool {
	return c.RedisMasterName != ""
}

// Validate reports every problem at once rather than stopping at the first.
func (c *Config) Validate() error {
	var errors []string

	if len(c.RedisAddrs) == 0 {
		errors = append(errors, "  - REDIS_ADDRS must list at least one host:port")
	}
	for _, addr := range c.RedisAddrs {
		if !strings.Contains(addr, ":") {
			errors = append(errors, fmt.Sprintf("  - REDIS_ADDRS entry %q is not host:port", addr))
		}
	}

	if len(c.RedisAddrs) > 1 && c.RedisMasterName == "" {
		errors = append(errors, "  - REDIS_MASTER_NAME is required when more than one address (sentinels) is given")
	}

	if c.RedisDB < 0 {
		errors = append(errors, "  - REDIS_DB must not be negative")
	}

	if c.RedisTimeout <= 0 {
		errors = append(errors, "  - REDIS_TIMEOUT must be positive")
	}

	switch c.Codec {
	case CodecMsgpack, CodecJSON:
	default:
		errors = append(errors, fmt.Sprintf("  - CODEC must be %q or %q, got %q", CodecMsgpack, CodecJSON, c.Codec))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}
	return nil
}

func MaskSecret(secret string) string {
	if secret == "" {
		return "<not set>"
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

func (c *Config) Print(fmtr func(string, ...interface{})) {
	fmtr("Configuration:\n")
	if c.Sentinel() {
		fmtr("  Redis: sentinel master %q via %s (db=%d)\n", c.RedisMasterName, strings.Join(c.RedisAddrs, ","), c.RedisDB)
	} else {
		fmtr("  Redis: %s (db=%d)\n", strings.Join(c.RedisAddrs, ","), c.RedisDB)
	}
	fmtr("  Password: %s\n", MaskSecret(c.RedisPassword))
	fmtr("  Timeout: %s\n", c.RedisTimeout)
	fmtr("  Key prefix: %s\n", c.KeyPrefix)
	fmtr("  Codec: %s\n", c.Codec)
}
