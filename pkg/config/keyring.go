package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const keyringService = "qtoken"

// keyringUser picks a stable name for the store's credential: the sentinel
// group when there is one, otherwise the first address.
func (c *Config) keyringUser() string {
	if c.RedisMasterName != "" {
		return "sentinel/" + c.RedisMasterName
	}
	if len(c.RedisAddrs) == 0 {
		return DefaultAddr
	}
	return strings.ToLower(strings.TrimSpace(c.RedisAddrs[0]))
}

// ResolvePassword fills RedisPassword from the OS keyring when UseKeyring is
// set and no password was configured explicitly. A missing keyring entry is
// not an error: the store may not require auth.
func (c *Config) ResolvePassword() error {
	if !c.UseKeyring || c.RedisPassword != "" {
		return nil
	}
	secret, err := keyring.Get(keyringService, c.keyringUser())
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("reading password from keyring: %w", err)
	}
	c.RedisPassword = secret
	return nil
}

// SavePassword stores the store password in the OS keyring.
func (c *Config) SavePassword(secret string) error {
	return keyring.Set(keyringService, c.keyringUser(), secret)
}

// DeletePassword removes the stored password. Deleting a missing entry
// succeeds.
func (c *Config) DeletePassword() error {
	err := keyring.Delete(keyringService, c.keyringUser())
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
