package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadFile reads a YAML (or any viper-supported) config file. QTOKEN_*
// environment variables override values from the file.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Every key needs a default so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("redis_addrs", []string{DefaultAddr})
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_timeout", DefaultTimeout)
	v.SetDefault("redis_master_name", "")
	v.SetDefault("redis_password_keyring", false)
	v.SetDefault("key_prefix", DefaultKeyPrefix)
	v.SetDefault("codec", CodecMsgpack)
	v.SetDefault("log_level", "info")
	v.SetDefault("listen_addr", DefaultListenAddr)
}
