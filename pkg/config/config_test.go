package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func validConfig() Config {
	return Config{
		RedisAddrs:   []string{"localhost:6379"},
		RedisTimeout: DefaultTimeout,
		KeyPrefix:    DefaultKeyPrefix,
		Codec:        CodecMsgpack,
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:6379"}, cfg.RedisAddrs)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 2*time.Second, cfg.RedisTimeout)
	assert.Equal(t, "qtoken:", cfg.KeyPrefix)
	assert.Equal(t, CodecMsgpack, cfg.Codec)
	assert.False(t, cfg.Sentinel())
}

func TestFromEnv_Sentinel(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("QTOKEN_REDIS_ADDRS", "s1:26379,s2:26379,s3:26379")
	t.Setenv("QTOKEN_REDIS_MASTER_NAME", "mymaster")
	t.Setenv("QTOKEN_REDIS_DB", "3")
	t.Setenv("QTOKEN_REDIS_TIMEOUT", "500ms")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, []string{"s1:26379", "s2:26379", "s3:26379"}, cfg.RedisAddrs)
	assert.True(t, cfg.Sentinel())
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 500*time.Millisecond, cfg.RedisTimeout)
}

func TestFromEnv_DotEnvFile(t *testing.T) {
	os.Unsetenv("QTOKEN_KEY_PREFIX")
	t.Cleanup(func() { os.Unsetenv("QTOKEN_KEY_PREFIX") })

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("QTOKEN_KEY_PREFIX=hod:\n"), 0o600))

	cfg, err := FromEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "hod:", cfg.KeyPrefix)
}

func TestFromEnv_SentinelsWithoutMasterName(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("QTOKEN_REDIS_ADDRS", "s1:26379,s2:26379")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_MASTER_NAME")
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.RedisAddrs = []string{"nohost"}
	cfg.RedisDB = -1
	cfg.RedisTimeout = 0
	cfg.Codec = "gob"

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"host:port", "REDIS_DB", "REDIS_TIMEOUT", "CODEC"} {
		assert.Contains(t, msg, want)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qtoken.yaml")
	content := `
redis_addrs:
  - redis.internal:6380
redis_db: 4
redis_timeout: 750ms
key_prefix: "tokens:"
codec: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"redis.internal:6380"}, cfg.RedisAddrs)
	assert.Equal(t, 4, cfg.RedisDB)
	assert.Equal(t, 750*time.Millisecond, cfg.RedisTimeout)
	assert.Equal(t, "tokens:", cfg.KeyPrefix)
	assert.Equal(t, CodecJSON, cfg.Codec)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qtoken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("redis_db: 1\n"), 0o644))
	t.Setenv("QTOKEN_REDIS_DB", "7")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.RedisDB)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "<not set>", MaskSecret(""))
	assert.Equal(t, "***", MaskSecret("short"))
	assert.Equal(t, "abcd...mnop", MaskSecret("abcdefghijklmnop"))
}

func TestPrintNeverLeaksPassword(t *testing.T) {
	cfg := validConfig()
	cfg.RedisPassword = "super-secret-password"

	var b strings.Builder
	cfg.Print(func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format, args...)
	})
	assert.Contains(t, b.String(), "supe...word")
	assert.NotContains(t, b.String(), "super-secret-password")
}

func TestResolvePassword_Keyring(t *testing.T) {
	keyring.MockInit()

	cfg := validConfig()
	cfg.UseKeyring = true

	require.NoError(t, cfg.ResolvePassword())
	assert.Empty(t, cfg.RedisPassword, "missing entry is not an error")

	require.NoError(t, cfg.SavePassword("from-keyring"))
	require.NoError(t, cfg.ResolvePassword())
	assert.Equal(t, "from-keyring", cfg.RedisPassword)

	explicit := validConfig()
	explicit.UseKeyring = true
	explicit.RedisPassword = "explicit"
	require.NoError(t, explicit.ResolvePassword())
	assert.Equal(t, "explicit", explicit.RedisPassword)

	require.NoError(t, cfg.DeletePassword())
	require.NoError(t, cfg.DeletePassword())
}

func TestResolvePassword_Disabled(t *testing.T) {
	keyring.MockInit()
	cfg := validConfig()
	require.NoError(t, cfg.SavePassword("ignored"))

	require.NoError(t, cfg.ResolvePassword())
	assert.Empty(t, cfg.RedisPassword)
}

func TestKeyringUser(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "localhost:6379", cfg.keyringUser())

	cfg.RedisMasterName = "mymaster"
	assert.Equal(t, "sentinel/mymaster", cfg.keyringUser())
}
