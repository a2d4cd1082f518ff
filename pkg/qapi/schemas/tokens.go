package schemas

import "time"

// Token is the wire form of a stored credential.
type Token struct {
	EntityType string    `json:"entity_type" minLength:"1" doc:"Entity kind the token was issued for" example:"APPLICATION"`
	TokenType  string    `json:"token_type" minLength:"1" doc:"Credential scheme" example:"SIMPLE"`
	Expiry     time.Time `json:"expiry" doc:"Absolute expiry instant; the token is dropped from the store at this time"`
	Refresh    time.Time `json:"refresh,omitempty" required:"false" doc:"Instant from which the token may be refreshed"`
	ID         string    `json:"id" doc:"Token identifier"`
	Secret     string    `json:"secret" doc:"Token secret"`
}

// InsertTokenResponse carries the proxy minted for a new token.
type InsertTokenResponse struct {
	Body struct {
		Proxy string `json:"proxy" doc:"Handle to pass to the get, update and remove endpoints" example:"APPLICATION:SIMPLE:0b6f8c1e-6a47-4f5c-9d4e-3c1f1e0a9a11"`
	}
}

// TokenResponse returns a stored token, or for update and remove the
// token that was replaced.
type TokenResponse struct {
	Body struct {
		Token Token `json:"token"`
	}
}

// HealthResponse reports whether the token store is reachable.
type HealthResponse struct {
	Body struct {
		Status string `json:"status" example:"ok" doc:"Health status"`
	}
}
