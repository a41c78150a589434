package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/emberwick/storefront-api/internal/cart"
	"github.com/emberwick/storefront-api/internal/catalog"
	httpclient "github.com/emberwick/storefront-api/internal/client/http"
	"github.com/emberwick/storefront-api/internal/logger"
)

// CartHandler exposes the session cart over HTTP
type CartHandler struct {
	common *CommonServices

	// openSignals records sessions whose cart drawer should open, fed by the
	// cart store's event bus and drained on the next cart read.
	mu          sync.Mutex
	openSignals map[string]bool
}

// NewCartHandler creates a CartHandler and subscribes it to cart open
// signals.
func NewCartHandler(common *CommonServices) *CartHandler {
	h := &CartHandler{
		common:      common,
		openSignals: make(map[string]bool),
	}
	if err := common.carts.Bus().Subscribe(cart.TopicCartOpened, h.markOpen); err != nil {
		logger.Fatal("failed to subscribe to cart events")
	}
	return h
}

func (h *CartHandler) markOpen(sessionID string) {
	h.mu.Lock()
	h.openSignals[sessionID] = true
	h.mu.Unlock()
}

func (h *CartHandler) consumeOpen(sessionID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	open := h.openSignals[sessionID]
	delete(h.openSignals, sessionID)
	return open
}

// CartResponse is the full cart state for the session
type CartResponse struct {
	Items             []cart.Item `json:"items"`
	Subtotal          float64     `json:"subtotal"`
	FormattedSubtotal string      `json:"formatted_subtotal"`
	Open              bool        `json:"open"`
}

func (h *CartHandler) cartResponse(sessionID string) CartResponse {
	subtotal := h.common.carts.Subtotal(sessionID)
	return CartResponse{
		Items:             h.common.carts.Items(sessionID),
		Subtotal:          subtotal,
		FormattedSubtotal: catalog.FormatPrice(subtotal, h.common.currency),
		Open:              h.consumeOpen(sessionID),
	}
}

// GetCart godoc
// @Summary Get the session cart
// @Produce json
// @Success 200 {object} CartResponse
// @Router /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	sendSuccess(c, http.StatusOK, h.cartResponse(sessionID(c)))
}

// AddItemRequest is the body for adding a product to the cart
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// AddItem godoc
// @Summary Add a product to the cart
// @Description Adds quantity (default 1) of a product, merging with any existing line
// @Accept json
// @Produce json
// @Param request body AddItemRequest true "Item to add"
// @Success 200 {object} CartResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		sendError(c, http.StatusBadRequest, "Quantity must be at least 1", nil)
		return
	}

	// the upstream catalog is the source of truth for prices and stock
	product, err := h.common.api.GetProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		if httpclient.IsStatus(err, http.StatusNotFound) {
			sendError(c, http.StatusNotFound, "Product not found", err)
			return
		}
		sendError(c, http.StatusBadGateway, "Catalog is temporarily unavailable", err)
		return
	}
	if product.Stock < req.Quantity {
		sendError(c, http.StatusConflict, "Not enough stock available", nil)
		return
	}

	session := sessionID(c)
	if err := h.common.carts.Add(session, *product, req.Quantity); err != nil {
		sendError(c, http.StatusBadRequest, "Could not add item to cart", err)
		return
	}
	sendSuccess(c, http.StatusOK, h.cartResponse(session))
}

// UpdateItemRequest is the body for changing a line's quantity
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItem godoc
// @Summary Update a cart line's quantity
// @Description A quantity of zero or less removes the line
// @Accept json
// @Produce json
// @Param product_id path string true "Product ID"
// @Param request body UpdateItemRequest true "New quantity"
// @Success 200 {object} CartResponse
// @Failure 400 {object} ErrorResponse
// @Router /cart/items/{product_id} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session := sessionID(c)
	h.common.carts.UpdateQuantity(session, c.Param("product_id"), req.Quantity)
	sendSuccess(c, http.StatusOK, h.cartResponse(session))
}

// RemoveItem godoc
// @Summary Remove a line from the cart
// @Produce json
// @Param product_id path string true "Product ID"
// @Success 200 {object} CartResponse
// @Router /cart/items/{product_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	session := sessionID(c)
	h.common.carts.Remove(session, c.Param("product_id"))
	sendSuccess(c, http.StatusOK, h.cartResponse(session))
}

// ClearCart godoc
// @Summary Empty the cart
// @Produce json
// @Success 200 {object} CartResponse
// @Router /cart [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	session := sessionID(c)
	h.common.carts.Clear(session)
	sendSuccess(c, http.StatusOK, h.cartResponse(session))
}
