package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpclient "github.com/emberwick/storefront-api/internal/client/http"
	"github.com/emberwick/storefront-api/internal/client/shopapi"
)

// AdminHandler backs the admin console: product, discount and order
// management. Authentication lives upstream; these endpoints hold the
// console's API key and proxy mutations through.
type AdminHandler struct {
	common *CommonServices
}

// NewAdminHandler creates a new AdminHandler instance
func NewAdminHandler(common *CommonServices) *AdminHandler {
	return &AdminHandler{common: common}
}

func (h *AdminHandler) handleUpstreamError(c *gin.Context, err error, notFoundMsg string) {
	switch {
	case httpclient.IsStatus(err, http.StatusNotFound):
		sendError(c, http.StatusNotFound, notFoundMsg, err)
	case httpclient.IsStatus(err, http.StatusUnprocessableEntity),
		httpclient.IsStatus(err, http.StatusBadRequest):
		sendError(c, http.StatusUnprocessableEntity, "Upstream rejected the request", err)
	default:
		sendError(c, http.StatusBadGateway, "Commerce API is temporarily unavailable", err)
	}
}

// CreateProduct godoc
// @Summary Create a catalog product
// @Accept json
// @Produce json
// @Param request body shopapi.CreateProductParams true "Product fields"
// @Success 201 {object} catalog.Product
// @Failure 422 {object} ErrorResponse
// @Router /admin/products [post]
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var params shopapi.CreateProductParams
	if err := c.ShouldBindJSON(&params); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if params.Name == "" || params.Price <= 0 {
		sendError(c, http.StatusBadRequest, "Name and a positive price are required", nil)
		return
	}

	product, err := h.common.api.CreateProduct(c.Request.Context(), params)
	if err != nil {
		h.handleUpstreamError(c, err, "Product not found")
		return
	}
	sendSuccess(c, http.StatusCreated, product)
}

// UpdateProduct godoc
// @Summary Update a catalog product
// @Accept json
// @Produce json
// @Param product_id path string true "Product ID"
// @Success 200 {object} catalog.Product
// @Failure 404 {object} ErrorResponse
// @Router /admin/products/{product_id} [put]
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	var params shopapi.CreateProductParams
	if err := c.ShouldBindJSON(&params); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	product, err := h.common.api.UpdateProduct(c.Request.Context(), c.Param("product_id"), params)
	if err != nil {
		h.handleUpstreamError(c, err, "Product not found")
		return
	}
	sendSuccess(c, http.StatusOK, product)
}

// DeleteProduct godoc
// @Summary Delete a catalog product
// @Param product_id path string true "Product ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /admin/products/{product_id} [delete]
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	if err := h.common.api.DeleteProduct(c.Request.Context(), c.Param("product_id")); err != nil {
		h.handleUpstreamError(c, err, "Product not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateDiscount godoc
// @Summary Create a discount
// @Accept json
// @Produce json
// @Param request body shopapi.CreateDiscountParams true "Discount fields"
// @Success 201 {object} catalog.Discount
// @Failure 422 {object} ErrorResponse
// @Router /admin/discounts [post]
func (h *AdminHandler) CreateDiscount(c *gin.Context) {
	var params shopapi.CreateDiscountParams
	if err := c.ShouldBindJSON(&params); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if params.Value <= 0 {
		sendError(c, http.StatusBadRequest, "Discount value must be positive", nil)
		return
	}

	discount, err := h.common.api.CreateDiscount(c.Request.Context(), params)
	if err != nil {
		h.handleUpstreamError(c, err, "Discount not found")
		return
	}
	sendSuccess(c, http.StatusCreated, discount)
}

// UpdateDiscount godoc
// @Summary Update a discount
// @Accept json
// @Produce json
// @Param discount_id path string true "Discount ID"
// @Success 200 {object} catalog.Discount
// @Failure 404 {object} ErrorResponse
// @Router /admin/discounts/{discount_id} [put]
func (h *AdminHandler) UpdateDiscount(c *gin.Context) {
	var params shopapi.CreateDiscountParams
	if err := c.ShouldBindJSON(&params); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	discount, err := h.common.api.UpdateDiscount(c.Request.Context(), c.Param("discount_id"), params)
	if err != nil {
		h.handleUpstreamError(c, err, "Discount not found")
		return
	}
	sendSuccess(c, http.StatusOK, discount)
}

// DeleteDiscount godoc
// @Summary Delete a discount
// @Param discount_id path string true "Discount ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /admin/discounts/{discount_id} [delete]
func (h *AdminHandler) DeleteDiscount(c *gin.Context) {
	if err := h.common.api.DeleteDiscount(c.Request.Context(), c.Param("discount_id")); err != nil {
		h.handleUpstreamError(c, err, "Discount not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListOrders godoc
// @Summary List orders
// @Produce json
// @Success 200 {array} catalog.Order
// @Router /admin/orders [get]
func (h *AdminHandler) ListOrders(c *gin.Context) {
	orders, err := h.common.api.ListOrders(c.Request.Context())
	if err != nil {
		h.handleUpstreamError(c, err, "Orders not found")
		return
	}
	sendSuccess(c, http.StatusOK, orders)
}

// GetOrder godoc
// @Summary Get an order by ID
// @Produce json
// @Param order_id path string true "Order ID"
// @Success 200 {object} catalog.Order
// @Failure 404 {object} ErrorResponse
// @Router /admin/orders/{order_id} [get]
func (h *AdminHandler) GetOrder(c *gin.Context) {
	order, err := h.common.api.GetOrder(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		h.handleUpstreamError(c, err, "Order not found")
		return
	}
	sendSuccess(c, http.StatusOK, order)
}
