package routes

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/quatton/qtoken/pkg/qtoken"
)

func RegisterAPI(api huma.API, repo *qtoken.Repository) {
	RegisterHealth(api, repo)
	RegisterTokens(api, repo)
}
