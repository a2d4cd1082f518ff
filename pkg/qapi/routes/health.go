package routes

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/quatton/qtoken/pkg/qapi/schemas"
	"github.com/quatton/qtoken/pkg/qtoken"
)

func RegisterHealth(api huma.API, repo *qtoken.Repository) {
	huma.Register(api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Pings the token store and reports whether it is reachable",
		Tags:        []string{TagHealth.String()},
	}, func(ctx context.Context, input *struct{}) (*schemas.HealthResponse, error) {
		if err := repo.Ping(ctx); err != nil {
			return nil, huma.Error503ServiceUnavailable("token store unreachable")
		}
		resp := &schemas.HealthResponse{}
		resp.Body.Status = "ok"
		return resp, nil
	})
}
