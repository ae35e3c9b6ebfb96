package controllers

import (
	"admin-restful/auth"

	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// Guard attaches authentication and route authorization to a route.
type Guard struct {
	authenticate restful.FilterFunction
	authorize    restful.FilterFunction
}

func NewGuard(authn *auth.Authenticator, evaluator *auth.Evaluator, cookieName string, logger *zap.Logger) *Guard {
	return &Guard{
		authenticate: auth.AuthFilter(authn, cookieName, logger),
		authorize:    auth.AccessFilter(evaluator, logger),
	}
}

// Protect runs AuthFilter then AccessFilter before the route function.
func (g *Guard) Protect(rb *restful.RouteBuilder) *restful.RouteBuilder {
	return rb.Filter(g.authenticate).Filter(g.authorize)
}
