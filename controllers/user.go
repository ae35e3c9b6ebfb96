package controllers

import (
	"net/http"

	"admin-restful/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

type UserController struct {
	userService services.UserService
	logger      *zap.Logger
}

func NewUserController(userService services.UserService, logger *zap.Logger) *UserController {
	return &UserController{userService: userService, logger: logger}
}

// RegisterRoutes sets up /users on ws. Every route is guarded.
func (ctl *UserController) RegisterRoutes(ws *restful.WebService, guard *Guard) {
	tags := []string{"users"}

	ws.Route(guard.Protect(ws.GET("/users")).To(ctl.listUsers).
		Doc("List users with pagination").
		Param(ws.QueryParameter("page", "Page number (default 1)").DataType("integer").DefaultValue("1")).
		Param(ws.QueryParameter("page_size", "Users per page (default 15)").DataType("integer").DefaultValue("15")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(PaginatedResponse{}).
		Returns(http.StatusOK, "Users listed", PaginatedResponse{}).
		Returns(http.StatusUnauthorized, "Unauthorized", MessageResponse{}).
		Returns(http.StatusForbidden, "Forbidden", MessageResponse{}))

	ws.Route(guard.Protect(ws.POST("/users")).To(ctl.createUser).
		Doc("Create a user").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.CreateUserInput{}).
		Returns(http.StatusCreated, "User created", DataResponse{}).
		Returns(http.StatusBadRequest, "Invalid request body", MessageResponse{}).
		Returns(http.StatusConflict, "Email already exists", MessageResponse{}))

	ws.Route(guard.Protect(ws.GET("/users/{id}")).To(ctl.getUser).
		Doc("Get user by ID").
		Param(ws.PathParameter("id", "Identifier of the user").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(DataResponse{}).
		Returns(http.StatusOK, "User found", DataResponse{}).
		Returns(http.StatusNotFound, "User not found", MessageResponse{}))

	ws.Route(guard.Protect(ws.PUT("/users/{id}")).To(ctl.updateUser).
		Doc("Update user by ID").
		Param(ws.PathParameter("id", "Identifier of the user").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.UpdateUserInput{}).
		Returns(http.StatusAccepted, "User updated", DataResponse{}).
		Returns(http.StatusNotFound, "User not found", MessageResponse{}).
		Returns(http.StatusConflict, "Email already exists", MessageResponse{}))

	ws.Route(guard.Protect(ws.DELETE("/users/{id}")).To(ctl.deleteUser).
		Doc("Delete user by ID").
		Param(ws.PathParameter("id", "Identifier of the user").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusNoContent, "User deleted", nil).
		Returns(http.StatusNotFound, "User not found", MessageResponse{}))
}

func (ctl *UserController) listUsers(request *restful.Request, response *restful.Response) {
	page, pageSize := pageParams(request)
	users, total, err := ctl.userService.ListUsers(request.Request.Context(), page, pageSize)
	if err != nil {
		writeError(request, response, ctl.logger, err)
		return
	}
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = mapModelToUserResponse(&users[i])
	}
	writePage(response, out, total, page, pageSize)
}

func (ctl *UserController) createUser(request *restful.Request, response *restful.Response) {
	input := new(services.CreateUserInput)
	if err := request.ReadEntity(input); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	user, err := ctl.userService.CreateUser(request.Request.Context(), input)
	if err != nil {
		writeError(request, response, ctl.logger, err)
		return
	}
	writeData(response, http.StatusCreated, mapModelToUserResponse(user))
}

func (ctl *UserController) getUser(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request)
	if !ok {
		writeMessage(response, http.StatusBadRequest, "Invalid user ID format")
		return
	}
	user, err := ctl.userService.GetUserByID(request.Request.Context(), id)
	if err != nil {
		writeError(request, response, ctl.logger, err)
		return
	}
	writeData(response, http.StatusOK, mapModelToUserResponse(user))
}

func (ctl *UserController) updateUser(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request)
	if !ok {
		writeMessage(response, http.StatusBadRequest, "Invalid user ID format")
		return
	}
	input := new(services.UpdateUserInput)
	if err := request.ReadEntity(input); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	user, err := ctl.userService.UpdateUser(request.Request.Context(), id, input)
	if err != nil {
		writeError(request, response, ctl.logger, err)
		return
	}
	writeData(response, http.StatusAccepted, mapModelToUserResponse(user))
}

func (ctl *UserController) deleteUser(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request)
	if !ok {
		writeMessage(response, http.StatusBadRequest, "Invalid user ID format")
		return
	}
	if err := ctl.userService.DeleteUser(request.Request.Context(), id); err != nil {
		writeError(request, response, ctl.logger, err)
		return
	}
	response.WriteHeader(http.StatusNoContent)
}
