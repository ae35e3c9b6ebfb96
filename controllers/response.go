package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"admin-restful/auth"
	"admin-restful/middleware"
	"admin-restful/services"

	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

const defaultPageSize = 15

// DataResponse wraps every successful payload.
type DataResponse struct {
	Data any `json:"data"`
}

type PageMeta struct {
	LastPage int `json:"last_page"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

type PaginatedResponse struct {
	Data any      `json:"data"`
	Meta PageMeta `json:"meta"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func writeData(response *restful.Response, status int, data any) {
	_ = response.WriteHeaderAndJson(status, DataResponse{Data: data}, restful.MIME_JSON)
}

func writeMessage(response *restful.Response, status int, message string) {
	_ = response.WriteHeaderAndJson(status, MessageResponse{Message: message}, restful.MIME_JSON)
}

func writePage(response *restful.Response, data any, total int64, page, pageSize int) {
	lastPage := int((total + int64(pageSize) - 1) / int64(pageSize))
	if lastPage < 1 {
		lastPage = 1
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, PaginatedResponse{
		Data: data,
		Meta: PageMeta{LastPage: lastPage, Page: page, PageSize: pageSize},
	}, restful.MIME_JSON)
}

// statusFor maps service and auth errors to a response status.
func statusFor(err error) int {
	if status := auth.HTTPStatus(err); status != 0 {
		return status
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidLogin):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// writeError translates err into a {"message": ...} response. Internal
// errors are logged and hidden from the client.
func writeError(request *restful.Request, response *restful.Response, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Unhandled service error",
			zap.String("request_id", middleware.RequestID(request)),
			zap.Error(err),
		)
		writeMessage(response, status, "An internal error occurred")
		return
	}
	writeMessage(response, status, err.Error())
}

// pathID parses the {id} path parameter.
func pathID(request *restful.Request) (uint, bool) {
	id, err := strconv.ParseUint(request.PathParameter("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// pageParams reads page and page_size, falling back to 1 and 15.
func pageParams(request *restful.Request) (int, int) {
	page, err := strconv.Atoi(request.QueryParameter("page"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(request.QueryParameter("page_size"))
	if err != nil || pageSize < 1 {
		pageSize = defaultPageSize
	}
	return page, pageSize
}
