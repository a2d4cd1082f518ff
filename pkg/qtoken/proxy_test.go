package qtoken

import (
	"testing"

	"github.com/quatton/qtoken/pkg/qerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProxy_FreshEachCall(t *testing.T) {
	a := NewProxy(EntityApplication, TokenSimple)
	b := NewProxy(EntityApplication, TokenSimple)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a.Key("p:"), b.Key("p:"))
	assert.True(t, a.Valid())
}

func TestProxy_StringRoundTrip(t *testing.T) {
	p := NewProxy(EntityDeveloper, TokenHMACSHA1)

	parsed, err := ParseProxy(p.String())
	require.NoError(t, err)
	assert.Equal(t, p, parsed)
}

func TestProxy_TagsWithSeparators(t *testing.T) {
	// Without escaping both would render as "a:b:c:<id>".
	p1 := Proxy{EntityType: "a:b", TokenType: "c", ID: "id"}
	p2 := Proxy{EntityType: "a", TokenType: "b:c", ID: "id"}

	assert.NotEqual(t, p1.String(), p2.String())

	parsed, err := ParseProxy(p1.String())
	require.NoError(t, err)
	assert.Equal(t, p1, parsed)
}

func TestProxy_Key(t *testing.T) {
	p := Proxy{EntityType: EntityUser, TokenType: TokenSimple, ID: "abc"}
	assert.Equal(t, "qtoken:USER:SIMPLE:abc", p.Key("qtoken:"))
}

func TestParseProxy_Invalid(t *testing.T) {
	for _, in := range []string{"", "USER:SIMPLE", "USER:SIMPLE:abc:extra", "USER::abc", "USER:SIMPLE:%zz"} {
		_, err := ParseProxy(in)
		assert.True(t, qerr.IsCode(err, qerr.CodeInvalidProxy), "input %q: %v", in, err)
	}
}

func TestProxy_Matches(t *testing.T) {
	p := NewProxy(EntityCombined, TokenSimple)

	assert.True(t, p.Matches(&Token{EntityType: EntityCombined, TokenType: TokenSimple}))
	assert.False(t, p.Matches(&Token{EntityType: EntityCombined, TokenType: TokenHMACSHA1}))
	assert.False(t, p.Matches(nil))
}
