package qtoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecs_PreserveToken(t *testing.T) {
	now := time.Now()
	token := &Token{
		EntityType: EntityApplication,
		TokenType:  TokenSimple,
		Expiry:     now.Add(time.Hour),
		Refresh:    now.Add(30 * time.Minute),
		ID:         "foo",
		Secret:     "bar",
	}

	for _, name := range []string{"", "msgpack", "json"} {
		codec, err := CodecByName(name)
		require.NoError(t, err)

		data, err := codec.Marshal(token)
		require.NoError(t, err)

		var got Token
		require.NoError(t, codec.Unmarshal(data, &got))
		assert.True(t, token.Equal(&got), "codec %s: %v != %v", codec.Name(), token, &got)
	}
}

func TestCodecByName_Unknown(t *testing.T) {
	_, err := CodecByName("gob")
	assert.Error(t, err)
}

func TestToken_HasExpired(t *testing.T) {
	now := time.Now()

	assert.True(t, (&Token{Expiry: now}).HasExpired(now))
	assert.True(t, (&Token{Expiry: now.Add(-time.Second)}).HasExpired(now))
	assert.False(t, (&Token{Expiry: now.Add(time.Nanosecond)}).HasExpired(now))
}

func TestToken_StringHidesSecret(t *testing.T) {
	token := &Token{EntityType: EntityUser, TokenType: TokenSimple, ID: "id", Secret: "s3cr3t"}
	assert.NotContains(t, token.String(), "s3cr3t")
}
