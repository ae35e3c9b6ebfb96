package controllers

import (
	"net/http"
	"time"

	"admin-restful/repositories"
	"admin-restful/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

type OrderItemResponse struct {
	ID           uint    `json:"id"`
	ProductTitle string  `json:"product_title"`
	Price        float64 `json:"price"`
	Quantity     uint    `json:"quantity"`
}

type OrderResponse struct {
	ID         uint                `json:"id"`
	Name       string              `json:"name"`
	Email      string              `json:"email"`
	Total      float64             `json:"total"`
	OrderItems []OrderItemResponse `json:"order_items"`
	CreatedAt  time.Time           `json:"created_at"`
}

func mapOrderViewToResponse(o *services.OrderView) OrderResponse {
	items := make([]OrderItemResponse, len(o.OrderItems))
	for i, it := range o.OrderItems {
		items[i] = OrderItemResponse{ID: it.ID, ProductTitle: it.ProductTitle, Price: it.Price, Quantity: it.Quantity}
	}
	return OrderResponse{
		ID:         o.ID,
		Name:       o.Name,
		Email:      o.Email,
		Total:      o.Total,
		OrderItems: items,
		CreatedAt:  o.CreatedAt,
	}
}

// OrderController exposes orders read-only, plus the revenue chart.
type OrderController struct {
	orderService services.OrderService
	logger       *zap.Logger
}

func NewOrderController(orderService services.OrderService, logger *zap.Logger) *OrderController {
	return &OrderController{orderService: orderService, logger: logger}
}

func (ctl *OrderController) RegisterRoutes(ws *restful.WebService, guard *Guard) {
	tags := []string{"orders"}

	ws.Route(guard.Protect(ws.GET("/orders")).To(ctl.listOrders).
		Doc("List orders with pagination").
		Param(ws.QueryParameter("page", "Page number (default 1)").DataType("integer").DefaultValue("1")).
		Param(ws.QueryParameter("page_size", "Orders per page (default 15)").DataType("integer").DefaultValue("15")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(PaginatedResponse{}).
		Returns(http.StatusOK, "Orders listed", PaginatedResponse{}))

	ws.Route(guard.Protect(ws.GET("/orders/{id}")).To(ctl.getOrder).
		Doc("Get order by ID with its items").
		Param(ws.PathParameter("id", "Identifier of the order").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(DataResponse{}).
		Returns(http.StatusOK, "Order found", DataResponse{}).
		Returns(http.StatusNotFound, "Order not found", MessageResponse{}))

	ws.Route(guard.Protect(ws.GET("/chart")).To(ctl.chart).
		Doc("Order revenue per day").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes([]repositories.DailySum{}).
		Returns(http.StatusOK, "Daily sums", DataResponse{}))
}

func (ctl *OrderController) listOrders(request *restful.Request, response *restful.Response) {
	page, pageSize := pageParams(request)
	orders, total, err := ctl.orderService.ListOrders(request.Request.Context(), page, pageSize)
	if err != nil {
		writeError(request, response, ctl.logger, err)
		return
	}
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = mapOrderViewToResponse(&orders[i])
	}
	writePage(response, out, total, page, pageSize)
}

func (ctl *OrderController) getOrder(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request)
	if !ok {
		writeMessage(response, http.StatusBadRequest, "Invalid order ID format")
		return
	}
	order, err := ctl.orderService.GetOrder(request.Request.Context(), id)
	if err != nil {
		writeError(request, response, ctl.logger, err)
		return
	}
	writeData(response, http.StatusOK, mapOrderViewToResponse(order))
}

func (ctl *OrderController) chart(request *restful.Request, response *restful.Response) {
	sums, err := ctl.orderService.Chart(request.Request.Context())
	if err != nil {
		writeError(request, response, ctl.logger, err)
		return
	}
	writeData(response, http.StatusOK, sums)
}
