package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emberwick/storefront-api/internal/autocomplete"
	"github.com/emberwick/storefront-api/internal/cart"
	"github.com/emberwick/storefront-api/internal/checkout"
	"github.com/emberwick/storefront-api/internal/client/shopapi"
	"github.com/emberwick/storefront-api/internal/logger"
)

// SessionHeader carries the browser session id. The server issues one when
// the client has none; the client echoes it back on every request.
const SessionHeader = "X-Session-ID"

// CommonServices holds shared dependencies used across handlers
type CommonServices struct {
	api      *shopapi.Client
	carts    *cart.Store
	flow     *checkout.Flow
	bridges  *autocomplete.Manager
	currency string
}

// NewCommonServices creates a new instance of CommonServices
func NewCommonServices(api *shopapi.Client, carts *cart.Store, flow *checkout.Flow, bridges *autocomplete.Manager, currency string) *CommonServices {
	return &CommonServices{
		api:      api,
		carts:    carts,
		flow:     flow,
		bridges:  bridges,
		currency: currency,
	}
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// sendError logs the error and sends a JSON error response
func sendError(c *gin.Context, statusCode int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)
	c.JSON(statusCode, ErrorResponse{Error: message})
}

// sendFieldError sends a validation failure scoped to a single form field
func sendFieldError(c *gin.Context, fieldErr *checkout.FieldError) {
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error: fieldErr.Message,
		Field: fieldErr.Field,
	})
}

// sendSuccess sends a success response with the given payload
func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// sessionID returns the request's session id, issuing a fresh one when the
// client has none. The id is always echoed on the response so the client can
// persist it.
func sessionID(c *gin.Context) string {
	id := c.GetHeader(SessionHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(SessionHeader, id)
	return id
}
