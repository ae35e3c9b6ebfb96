package controllers

import (
	"net/http"
	"time"

	"admin-restful/models"
	"admin-restful/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

type ProductResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

func mapModelToProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Price:       p.Price,
		CreatedAt:   p.CreatedAt,
	}
}

type ProductController struct {
	productService services.ProductService
	logger         *zap.Logger
}

func NewProductController(productService services.ProductService, logger *zap.Logger) *ProductController {
	return &ProductController{productService: productService, logger: logger}
}

func (ctl *ProductController) RegisterRoutes(ws *restful.WebService, guard *Guard) {
	tags := []string{"products"}

	ws.Route(guard.Protect(ws.GET("/products")).To(ctl.listProducts).
		Doc("List products with pagination").
		Param(ws.QueryParameter("page", "Page number (default 1)").DataType("integer").DefaultValue("1")).
		Param(ws.QueryParameter("page_size", "Products per page (default 15)").DataType("integer").DefaultValue("15")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(PaginatedResponse{}).
		Returns(http.StatusOK, "Products listed", PaginatedResponse{}))

	ws.Route(guard.Protect(ws.POST("/products")).To(ctl.createProduct).
		Doc("Create a product").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.CreateProductInput{}).
		Returns(http.StatusCreated, "Product created", DataResponse{}).
		Returns(http.StatusBadRequest, "Invalid request body", MessageResponse{}))

	ws.Route(guard.Protect(ws.GET("/products/{id}")).To(ctl.getProduct).
		Doc("Get product by ID").
		Param(ws.PathParameter("id", "Identifier of the product").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(DataResponse{}).
		Returns(http.StatusOK, "Product found", DataResponse{}).
		Returns(http.StatusNotFound, "Product not found", MessageResponse{}))

	ws.Route(guard.Protect(ws.PUT("/products/{id}")).To(ctl.updateProduct).
		Doc("Partially update a product").
		Param(ws.PathParameter("id", "Identifier of the product").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.UpdateProductInput{}).
		Returns(http.StatusAccepted, "Product updated", DataResponse{}).
		Returns(http.StatusNotFound, "Product not found", MessageResponse{}))

	ws.Route(guard.Protect(ws.DELETE("/products/{id}")).To(ctl.deleteProduct).
		Doc("Delete a product").
		Param(ws.PathParameter("id", "Identifier of the product").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusNoContent, "Product deleted", nil).
		Returns(http.StatusNotFound, "Product not found", MessageResponse{}))
}

func (ctl *ProductController) listProducts(request *restful.Request, response *restful.Response) {
	page, pageSize := pageParams(request)
	products, total, err := ctl.productService.ListProducts(request.Request.Context(), page, pageSize)
	if err != nil {
		writeError(request, response, ctl.logger, err)
		return
	}
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = mapModelToProductResponse(&products[i])
	}
	writePage(response, out, total, page, pageSize)
}

func (ctl *ProductController) createProduct(request *restful.Request, response *restful.Response) {
	input := new(services.CreateProductInput)
	if err := request.ReadEntity(input); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	product, err := ctl.productService.CreateProduct(request.Request.Context(), input)
	if err != nil {
		writeError(request, response, ctl.logger, err)
		return
	}
	writeData(response, http.StatusCreated, mapModelToProductResponse(product))
}

func (ctl *ProductController) getProduct(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request)
	if !ok {
		writeMessage(response, http.StatusBadRequest, "Invalid product ID format")
		return
	}
	product, err := ctl.productService.GetProduct(request.Request.Context(), id)
	if err != nil {
		writeError(request, response, ctl.logger, err)
		return
	}
	writeData(response, http.StatusOK, mapModelToProductResponse(product))
}

func (ctl *ProductController) updateProduct(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request)
	if !ok {
		writeMessage(response, http.StatusBadRequest, "Invalid product ID format")
		return
	}
	input := new(services.UpdateProductInput)
	if err := request.ReadEntity(input); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	product, err := ctl.productService.UpdateProduct(request.Request.Context(), id, input)
	if err != nil {
		writeError(request, response, ctl.logger, err)
		return
	}
	writeData(response, http.StatusAccepted, mapModelToProductResponse(product))
}

func (ctl *ProductController) deleteProduct(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request)
	if !ok {
		writeMessage(response, http.StatusBadRequest, "Invalid product ID format")
		return
	}
	if err := ctl.productService.DeleteProduct(request.Request.Context(), id); err != nil {
		writeError(request, response, ctl.logger, err)
		return
	}
	response.WriteHeader(http.StatusNoContent)
}
