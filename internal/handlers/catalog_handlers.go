package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emberwick/storefront-api/internal/catalog"
	httpclient "github.com/emberwick/storefront-api/internal/client/http"
)

// CatalogHandler serves the public storefront catalog
type CatalogHandler struct {
	common *CommonServices
}

// NewCatalogHandler creates a new CatalogHandler instance
func NewCatalogHandler(common *CommonServices) *CatalogHandler {
	return &CatalogHandler{common: common}
}

// ProductView is a catalog product decorated with the presentation fields
// the storefront derives client-side of the commerce API.
type ProductView struct {
	catalog.Product
	HasDiscount            bool   `json:"has_discount"`
	FormattedOriginalPrice string `json:"formatted_original_price,omitempty"`
}

func (h *CatalogHandler) toView(p catalog.Product) ProductView {
	view := ProductView{
		Product:     catalog.Decorate(p, h.common.currency),
		HasDiscount: catalog.HasDiscount(p),
	}
	if view.HasDiscount {
		// original price rendered for the strikethrough
		view.FormattedOriginalPrice = catalog.FormatPrice(p.Price, h.common.currency)
	}
	return view
}

// ListProducts godoc
// @Summary List catalog products
// @Description Returns every product with discounts resolved into current prices
// @Produce json
// @Success 200 {array} ProductView
// @Failure 502 {object} ErrorResponse
// @Router /products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.common.api.ListProducts(c.Request.Context())
	if err != nil {
		sendError(c, http.StatusBadGateway, "Catalog is temporarily unavailable", err)
		return
	}

	views := make([]ProductView, len(products))
	for i, product := range products {
		views[i] = h.toView(product)
	}
	sendSuccess(c, http.StatusOK, views)
}

// GetProduct godoc
// @Summary Get a product by ID
// @Produce json
// @Param product_id path string true "Product ID"
// @Success 200 {object} ProductView
// @Failure 404 {object} ErrorResponse
// @Router /products/{product_id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	productID := c.Param("product_id")

	product, err := h.common.api.GetProduct(c.Request.Context(), productID)
	if err != nil {
		if httpclient.IsStatus(err, http.StatusNotFound) {
			sendError(c, http.StatusNotFound, "Product not found", err)
			return
		}
		sendError(c, http.StatusBadGateway, "Catalog is temporarily unavailable", err)
		return
	}

	sendSuccess(c, http.StatusOK, h.toView(*product))
}
