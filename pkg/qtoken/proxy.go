package qtoken

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/quatton/qtoken/pkg/qerr"
)

// Proxy is the handle a caller keeps instead of the token itself. It is
// scoped by the token's classification, so a proxy minted for one
// entity/token type pair can never address a token of another pair.
type Proxy struct {
	EntityType EntityType `json:"entity_type" msgpack:"entity_type"`
	TokenType  TokenType  `json:"token_type" msgpack:"token_type"`
	ID         string     `json:"id" msgpack:"id"`
}

// NewProxy mints a fresh proxy for the classification. Every call returns a
// different proxy, so several tokens of the same kind can coexist.
func NewProxy(entity EntityType, kind TokenType) Proxy {
	return Proxy{EntityType: entity, TokenType: kind, ID: uuid.NewString()}
}

// String renders "<entity>:<type>:<id>" with every component query-escaped,
// which keeps the separator unambiguous whatever the tags contain.
func (p Proxy) String() string {
	return url.QueryEscape(string(p.EntityType)) + ":" +
		url.QueryEscape(string(p.TokenType)) + ":" +
		url.QueryEscape(p.ID)
}

// Key is the store key for the proxy under the given namespace prefix.
func (p Proxy) Key(prefix string) string {
	return prefix + p.String()
}

// Valid reports whether every component is set.
func (p Proxy) Valid() bool {
	return p.EntityType != "" && p.TokenType != "" && p.ID != ""
}

// Matches reports whether the token has the proxy's classification.
func (p Proxy) Matches(t *Token) bool {
	return t != nil && t.EntityType == p.EntityType && t.TokenType == p.TokenType
}

// ParseProxy is the inverse of Proxy.String.
func ParseProxy(s string) (Proxy, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Proxy{}, qerr.Newf(qerr.CodeInvalidProxy, "proxy %q: want <entity>:<type>:<id>", s)
	}

	var unescaped [3]string
	for i, part := range parts {
		v, err := url.QueryUnescape(part)
		if err != nil {
			return Proxy{}, qerr.New(qerr.CodeInvalidProxy, fmt.Errorf("proxy %q: %w", s, err))
		}
		unescaped[i] = v
	}

	p := Proxy{
		EntityType: EntityType(unescaped[0]),
		TokenType:  TokenType(unescaped[1]),
		ID:         unescaped[2],
	}
	if !p.Valid() {
		return Proxy{}, qerr.Newf(qerr.CodeInvalidProxy, "proxy %q has an empty component", s)
	}
	return p, nil
}
