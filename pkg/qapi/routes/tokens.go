package routes

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/quatton/qtoken/pkg/qapi/schemas"
	"github.com/quatton/qtoken/pkg/qerr"
	"github.com/quatton/qtoken/pkg/qtoken"
)

// InsertTokenInput defines the input for storing a token
type InsertTokenInput struct {
	Body schemas.Token
}

// ProxyInput addresses a stored token by its proxy
type ProxyInput struct {
	Proxy string `path:"proxy" doc:"Proxy returned when the token was inserted"`
}

// UpdateTokenInput defines the input for replacing a stored token
type UpdateTokenInput struct {
	Proxy string `path:"proxy" doc:"Proxy returned when the token was inserted"`
	Body  schemas.Token
}

// RegisterTokens registers the token repository routes
func RegisterTokens(api huma.API, repo *qtoken.Repository) {
	huma.Register(api, huma.Operation{
		OperationID:   "insert-token",
		Method:        http.MethodPost,
		Path:          "/api/tokens",
		Summary:       "Store a token",
		Description:   "Stores a token until its expiry and returns the proxy that addresses it",
		Tags:          []string{TagTokens.String()},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *InsertTokenInput) (*schemas.InsertTokenResponse, error) {
		proxy, err := repo.Insert(ctx, fromSchema(&input.Body))
		if err != nil {
			return nil, toHTTPError(err)
		}
		resp := &schemas.InsertTokenResponse{}
		resp.Body.Proxy = proxy.String()
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-token",
		Method:      http.MethodGet,
		Path:        "/api/tokens/{proxy}",
		Summary:     "Get a token",
		Description: "Returns the token stored under the proxy. Expired tokens are not found.",
		Tags:        []string{TagTokens.String()},
	}, func(ctx context.Context, input *ProxyInput) (*schemas.TokenResponse, error) {
		proxy, err := qtoken.ParseProxy(input.Proxy)
		if err != nil {
			return nil, toHTTPError(err)
		}
		token, err := repo.Get(ctx, proxy)
		if err != nil {
			return nil, toHTTPError(err)
		}
		return tokenResponse(token)
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-token",
		Method:      http.MethodPut,
		Path:        "/api/tokens/{proxy}",
		Summary:     "Replace a token",
		Description: "Atomically replaces the token stored under the proxy and resets its expiry. Returns the replaced token; nothing is written when no token is stored.",
		Tags:        []string{TagTokens.String()},
	}, func(ctx context.Context, input *UpdateTokenInput) (*schemas.TokenResponse, error) {
		proxy, err := qtoken.ParseProxy(input.Proxy)
		if err != nil {
			return nil, toHTTPError(err)
		}
		old, err := repo.Update(ctx, proxy, fromSchema(&input.Body))
		if err != nil {
			return nil, toHTTPError(err)
		}
		return tokenResponse(old)
	})

	huma.Register(api, huma.Operation{
		OperationID: "remove-token",
		Method:      http.MethodDelete,
		Path:        "/api/tokens/{proxy}",
		Summary:     "Remove a token",
		Description: "Atomically deletes the token stored under the proxy and returns it",
		Tags:        []string{TagTokens.String()},
	}, func(ctx context.Context, input *ProxyInput) (*schemas.TokenResponse, error) {
		proxy, err := qtoken.ParseProxy(input.Proxy)
		if err != nil {
			return nil, toHTTPError(err)
		}
		old, err := repo.Remove(ctx, proxy)
		if err != nil {
			return nil, toHTTPError(err)
		}
		return tokenResponse(old)
	})
}

func tokenResponse(token *qtoken.Token) (*schemas.TokenResponse, error) {
	if token == nil {
		return nil, huma.Error404NotFound("token not found")
	}
	resp := &schemas.TokenResponse{}
	resp.Body.Token = toSchema(token)
	return resp, nil
}

func fromSchema(t *schemas.Token) *qtoken.Token {
	return &qtoken.Token{
		EntityType: qtoken.EntityType(t.EntityType),
		TokenType:  qtoken.TokenType(t.TokenType),
		Expiry:     t.Expiry,
		Refresh:    t.Refresh,
		ID:         t.ID,
		Secret:     t.Secret,
	}
}

func toSchema(t *qtoken.Token) schemas.Token {
	return schemas.Token{
		EntityType: string(t.EntityType),
		TokenType:  string(t.TokenType),
		Expiry:     t.Expiry,
		Refresh:    t.Refresh,
		ID:         t.ID,
		Secret:     t.Secret,
	}
}

// toHTTPError maps repository error codes onto status codes. Transport
// failures are reported as 503 so callers know a retry may succeed.
func toHTTPError(err error) error {
	switch qerr.CodeOf(err) {
	case qerr.CodeExpiredToken, qerr.CodeInvalidToken:
		return huma.Error422UnprocessableEntity(err.Error())
	case qerr.CodeInvalidProxy:
		return huma.Error400BadRequest(err.Error())
	case qerr.CodeTransport:
		return huma.Error503ServiceUnavailable("token store unavailable")
	default:
		return huma.Error500InternalServerError("token store integrity failure")
	}
}
