package controllers

import (
	"net/http"

	"admin-restful/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

type PermissionController struct {
	permissionService services.PermissionService
	logger            *zap.Logger
}

func NewPermissionController(permissionService services.PermissionService, logger *zap.Logger) *PermissionController {
	return &PermissionController{permissionService: permissionService, logger: logger}
}

// RegisterRoutes adds GET /permissions, open to any authenticated user.
func (ctl *PermissionController) RegisterRoutes(ws *restful.WebService, guard *Guard) {
	ws.Route(guard.Protect(ws.GET("/permissions")).To(ctl.listPermissions).
		Doc("List the permission catalog").
		Metadata(restfulspec.KeyOpenAPITags, []string{"permissions"}).
		Writes(DataResponse{}).
		Returns(http.StatusOK, "Permissions listed", DataResponse{}).
		Returns(http.StatusUnauthorized, "Unauthorized", MessageResponse{}))
}

func (ctl *PermissionController) listPermissions(request *restful.Request, response *restful.Response) {
	perms, err := ctl.permissionService.ListPermissions(request.Request.Context())
	if err != nil {
		writeError(request, response, ctl.logger, err)
		return
	}
	writeData(response, http.StatusOK, mapPermissions(perms))
}
