// Package qtoken stores authentication tokens in Redis/Valkey until they
// expire. Each stored token is addressed by a Proxy minted at insert time;
// update and remove are atomic and hand back the value they replaced.
package qtoken

import (
	"fmt"
	"time"
)

// EntityType is the kind of principal a token was issued for. The set is
// open: any non-empty tag is accepted.
type EntityType string

const (
	EntityApplication EntityType = "APPLICATION"
	EntityUser        EntityType = "USER"
	EntityCombined    EntityType = "COMBINED"
	EntityDeveloper   EntityType = "DEVELOPER"
	EntityUnbound     EntityType = "UNBOUND"
)

// TokenType is the credential scheme of a token. Like EntityType it is an
// open set of tags.
type TokenType string

const (
	TokenSimple   TokenType = "SIMPLE"
	TokenHMACSHA1 TokenType = "HMAC_SHA1"
)

// Token is an authentication credential issued by the identity service.
type Token struct {
	EntityType EntityType `json:"entity_type" msgpack:"entity_type"`
	TokenType  TokenType  `json:"token_type" msgpack:"token_type"`
	Expiry     time.Time  `json:"expiry" msgpack:"expiry"`
	ID         string     `json:"id" msgpack:"id"`
	Secret     string     `json:"secret" msgpack:"secret"`
	Refresh    time.Time  `json:"refresh" msgpack:"refresh"`
}

// HasExpired reports whether the token's expiry is not strictly after now.
func (t *Token) HasExpired(now time.Time) bool {
	return !t.Expiry.After(now)
}

// Equal compares two tokens field by field, using time.Time.Equal for the
// instants so decoded copies compare equal to their originals.
func (t *Token) Equal(o *Token) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.EntityType == o.EntityType &&
		t.TokenType == o.TokenType &&
		t.Expiry.Equal(o.Expiry) &&
		t.Refresh.Equal(o.Refresh) &&
		t.ID == o.ID &&
		t.Secret == o.Secret
}

// String omits the secret.
func (t *Token) String() string {
	if t == nil {
		return "<nil>"
	}
	return fmt.Sprintf("Token{%s/%s id=%s expiry=%s}", t.EntityType, t.TokenType, t.ID, t.Expiry.Format(time.RFC3339))
}
