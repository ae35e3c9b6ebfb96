package controllers

import (
	"net/http"

	"admin-restful/models"
	"admin-restful/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

type PermissionResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type RoleResponse struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Permissions []PermissionResponse `json:"permissions"`
}

func mapPermissions(perms []models.Permission) []PermissionResponse {
	out := make([]PermissionResponse, len(perms))
	for i, p := range perms {
		out[i] = PermissionResponse{ID: p.ID, Name: p.Name}
	}
	return out
}

func mapModelToRoleResponse(role *models.Role) RoleResponse {
	return RoleResponse{ID: role.ID, Name: role.Name, Permissions: mapPermissions(role.Permissions)}
}

type RoleController struct {
	roleService services.RoleService
	logger      *zap.Logger
}

func NewRoleController(roleService services.RoleService, logger *zap.Logger) *RoleController {
	return &RoleController{roleService: roleService, logger: logger}
}

func (ctl *RoleController) RegisterRoutes(ws *restful.WebService, guard *Guard) {
	tags := []string{"roles"}

	ws.Route(guard.Protect(ws.GET("/roles")).To(ctl.listRoles).
		Doc("List roles with their permissions").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(DataResponse{}).
		Returns(http.StatusOK, "Roles listed", DataResponse{}))

	ws.Route(guard.Protect(ws.POST("/roles")).To(ctl.createRole).
		Doc("Create a role with a set of permission ids").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.RoleInput{}).
		Returns(http.StatusCreated, "Role created", DataResponse{}).
		Returns(http.StatusUnprocessableEntity, "Unknown permission ids", MessageResponse{}))

	ws.Route(guard.Protect(ws.GET("/roles/{id}")).To(ctl.getRole).
		Doc("Get role by ID").
		Param(ws.PathParameter("id", "Identifier of the role").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(DataResponse{}).
		Returns(http.StatusOK, "Role found", DataResponse{}).
		Returns(http.StatusNotFound, "Role not found", MessageResponse{}))

	ws.Route(guard.Protect(ws.PUT("/roles/{id}")).To(ctl.updateRole).
		Doc("Rename a role and replace its permissions").
		Param(ws.PathParameter("id", "Identifier of the role").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.RoleInput{}).
		Returns(http.StatusAccepted, "Role updated", DataResponse{}).
		Returns(http.StatusNotFound, "Role not found", MessageResponse{}).
		Returns(http.StatusUnprocessableEntity, "Unknown permission ids", MessageResponse{}))

	ws.Route(guard.Protect(ws.DELETE("/roles/{id}")).To(ctl.deleteRole).
		Doc("Delete a role; its users are left without a role").
		Param(ws.PathParameter("id", "Identifier of the role").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusNoContent, "Role deleted", nil).
		Returns(http.StatusNotFound, "Role not found", MessageResponse{}))
}

func (ctl *RoleController) listRoles(request *restful.Request, response *restful.Response) {
	roles, err := ctl.roleService.ListRoles(request.Request.Context())
	if err != nil {
		writeError(request, response, ctl.logger, err)
		return
	}
	out := make([]RoleResponse, len(roles))
	for i := range roles {
		out[i] = mapModelToRoleResponse(&roles[i])
	}
	writeData(response, http.StatusOK, out)
}

func (ctl *RoleController) createRole(request *restful.Request, response *restful.Response) {
	input := new(services.RoleInput)
	if err := request.ReadEntity(input); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	role, err := ctl.roleService.CreateRole(request.Request.Context(), input)
	if err != nil {
		writeError(request, response, ctl.logger, err)
		return
	}
	writeData(response, http.StatusCreated, mapModelToRoleResponse(role))
}

func (ctl *RoleController) getRole(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request)
	if !ok {
		writeMessage(response, http.StatusBadRequest, "Invalid role ID format")
		return
	}
	role, err := ctl.roleService.GetRole(request.Request.Context(), id)
	if err != nil {
		writeError(request, response, ctl.logger, err)
		return
	}
	writeData(response, http.StatusOK, mapModelToRoleResponse(role))
}

func (ctl *RoleController) updateRole(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request)
	if !ok {
		writeMessage(response, http.StatusBadRequest, "Invalid role ID format")
		return
	}
	input := new(services.RoleInput)
	if err := request.ReadEntity(input); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	role, err := ctl.roleService.UpdateRole(request.Request.Context(), id, input)
	if err != nil {
		writeError(request, response, ctl.logger, err)
		return
	}
	writeData(response, http.StatusAccepted, mapModelToRoleResponse(role))
}

func (ctl *RoleController) deleteRole(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request)
	if !ok {
		writeMessage(response, http.StatusBadRequest, "Invalid role ID format")
		return
	}
	if err := ctl.roleService.DeleteRole(request.Request.Context(), id); err != nil {
		writeError(request, response, ctl.logger, err)
		return
	}
	response.WriteHeader(http.StatusNoContent)
}
