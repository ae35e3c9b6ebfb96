package controllers

import (
	"context"
	"fmt"
	"net/http"

	"admin-restful/auth"
	"admin-restful/middleware"
	"admin-restful/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"go.uber.org/zap"
)

// Services bundles the application services the HTTP layer calls.
type Services struct {
	Auth        services.AuthService
	Users       services.UserService
	Roles       services.RoleService
	Permissions services.PermissionService
	Products    services.ProductService
	Orders      services.OrderService
}

type RouterConfig struct {
	CookieName string
	// LoginLimiter throttles POST /api/login per client IP. Nil disables it.
	LoginLimiter *middleware.RateLimiter
	// Health reports readiness for GET /healthz. Nil always reports healthy.
	Health func(ctx context.Context) error
	Logger *zap.Logger
}

// NewContainer assembles the go-restful container: the /api web service
// guarded by the access table, /healthz and the OpenAPI document.
func NewContainer(svc Services, authn *auth.Authenticator, cfg RouterConfig) (*restful.Container, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	table, err := auth.NewAccessTable(AccessRules()...)
	if err != nil {
		return nil, err
	}
	guard := NewGuard(authn, auth.NewEvaluator(table), cfg.CookieName, logger)

	var loginLimit restful.FilterFunction
	if cfg.LoginLimiter != nil {
		loginLimit = cfg.LoginLimiter.Filter(logger)
	}

	ws := new(restful.WebService)
	ws.Path(APIRoot).Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)

	NewAuthController(svc.Auth, svc.Users, cfg.CookieName, logger).RegisterRoutes(ws, guard, loginLimit)
	NewUserController(svc.Users, logger).RegisterRoutes(ws, guard)
	NewRoleController(svc.Roles, logger).RegisterRoutes(ws, guard)
	NewPermissionController(svc.Permissions, logger).RegisterRoutes(ws, guard)
	NewProductController(svc.Products, logger).RegisterRoutes(ws, guard)
	NewOrderController(svc.Orders, logger).RegisterRoutes(ws, guard)

	if err := checkCoverage(ws, table); err != nil {
		return nil, err
	}

	container := restful.NewContainer()
	container.DoNotRecover(false)
	container.RecoverHandler(func(panicReason any, w http.ResponseWriter) {
		logger.Error("panic while serving request", zap.Any("reason", panicReason), zap.Stack("stack"))
		w.Header().Set("Content-Type", restful.MIME_JSON)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Internal Server Error"}`))
	})
	container.Filter(middleware.AccessLog(logger))
	container.Add(ws)
	container.Add(healthService(cfg.Health))

	container.Add(restfulspec.NewOpenAPIService(restfulspec.Config{
		WebServices:                   []*restful.WebService{ws},
		APIPath:                       "/apidocs.json",
		PostBuildSwaggerObjectHandler: enrichSwaggerObject,
	}))
	return container, nil
}

// checkCoverage fails when a non-public route has no access rule, since
// the access filter would deny it unconditionally, and when a rule names
// no registered route.
func checkCoverage(ws *restful.WebService, table *auth.AccessTable) error {
	routes := make(map[string]bool)
	for _, r := range ws.Routes() {
		routes[r.Method+" "+r.Path] = true
		if publicRoutes[r.Method+" "+r.Path] {
			continue
		}
		if _, ok := table.Lookup(r.Method, r.Path); !ok {
			return fmt.Errorf("route %s %s has no access rule", r.Method, r.Path)
		}
	}
	for _, rule := range table.Rules() {
		if !routes[rule.Method+" "+rule.Path] {
			return fmt.Errorf("access rule %s %s matches no route", rule.Method, rule.Path)
		}
	}
	return nil
}

func healthService(check func(ctx context.Context) error) *restful.WebService {
	ws := new(restful.WebService)
	ws.Path("/healthz").Produces(restful.MIME_JSON)
	ws.Route(ws.GET("").To(func(request *restful.Request, response *restful.Response) {
		if check != nil {
			if err := check(request.Request.Context()); err != nil {
				writeMessage(response, http.StatusServiceUnavailable, "unavailable")
				return
			}
		}
		writeMessage(response, http.StatusOK, "ok")
	}).Doc("Liveness and database readiness"))
	return ws
}

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "Admin API",
			Description: "Users, roles, products and orders behind token authentication and role permissions",
			Version:     "1.0.0",
		},
	}
	swo.Tags = []spec.Tag{
		{TagProps: spec.TagProps{Name: "auth", Description: "Login, logout and registration"}},
		{TagProps: spec.TagProps{Name: "users", Description: "Managing users"}},
		{TagProps: spec.TagProps{Name: "roles", Description: "Managing roles and their permissions"}},
		{TagProps: spec.TagProps{Name: "permissions", Description: "Permission catalog"}},
		{TagProps: spec.TagProps{Name: "products", Description: "Managing products"}},
		{TagProps: spec.TagProps{Name: "orders", Description: "Orders and revenue"}},
	}
}
