package server

import (
	"net/http"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emberwick/storefront-api/internal/autocomplete"
	"github.com/emberwick/storefront-api/internal/cart"
	"github.com/emberwick/storefront-api/internal/checkout"
	"github.com/emberwick/storefront-api/internal/client/places"
	"github.com/emberwick/storefront-api/internal/client/shopapi"
	"github.com/emberwick/storefront-api/internal/config"
	"github.com/emberwick/storefront-api/internal/handlers"
	"github.com/emberwick/storefront-api/internal/logger"
	"github.com/emberwick/storefront-api/internal/store"
)

// Server wires the storefront's stores, upstream clients and HTTP surface.
type Server struct {
	router *gin.Engine
	db     *store.Store
	cfg    *config.Config
}

// New builds a fully wired server from configuration.
func New(cfg *config.Config) (*Server, error) {
	db, err := store.Open(cfg.DataFile)
	if err != nil {
		return nil, err
	}

	api := shopapi.New(cfg.ShopAPIBaseURL, cfg.ShopAPIKey)
	placesClient := places.New(cfg.PlacesBaseURL, cfg.PlacesAPIKey)

	bus := EventBus.New()
	carts := cart.NewStore(db, bus)
	flow := checkout.NewFlow(db, api, carts, cfg.Currency)
	bridges := autocomplete.NewManager(placesClient, cfg.DebounceInterval)

	common := handlers.NewCommonServices(api, carts, flow, bridges, cfg.Currency)

	catalogHandler := handlers.NewCatalogHandler(common)
	cartHandler := handlers.NewCartHandler(common)
	checkoutHandler := handlers.NewCheckoutHandler(common)
	adminHandler := handlers.NewAdminHandler(common)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", handlers.SessionHeader},
		ExposeHeaders:    []string{handlers.SessionHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", catalogHandler.ListProducts)
		v1.GET("/products/:product_id", catalogHandler.GetProduct)

		v1.GET("/cart", cartHandler.GetCart)
		v1.DELETE("/cart", cartHandler.ClearCart)
		v1.POST("/cart/items", cartHandler.AddItem)
		v1.PUT("/cart/items/:product_id", cartHandler.UpdateItem)
		v1.DELETE("/cart/items/:product_id", cartHandler.RemoveItem)

		co := v1.Group("/checkout")
		{
			co.GET("", checkoutHandler.GetCheckout)
			co.DELETE("", checkoutHandler.Reset)
			co.PUT("/contact", checkoutHandler.SetContact)
			co.PUT("/address", checkoutHandler.SetAddress)
			co.POST("/address/autocomplete", checkoutHandler.AutocompleteAddress)
			co.POST("/address/select", checkoutHandler.SelectAddress)
			co.GET("/shipping/rates", checkoutHandler.ShippingRates)
			co.PUT("/shipping", checkoutHandler.SelectShipping)
			co.POST("/coupon", checkoutHandler.ApplyCoupon)
			co.DELETE("/coupon", checkoutHandler.RemoveCoupon)
			co.POST("/payment-intent", checkoutHandler.CreatePaymentIntent)
			co.POST("/submit", checkoutHandler.Submit)
			co.POST("/back", checkoutHandler.Back)
		}

		admin := v1.Group("/admin")
		{
			admin.POST("/products", adminHandler.CreateProduct)
			admin.PUT("/products/:product_id", adminHandler.UpdateProduct)
			admin.DELETE("/products/:product_id", adminHandler.DeleteProduct)

			admin.POST("/discounts", adminHandler.CreateDiscount)
			admin.PUT("/discounts/:discount_id", adminHandler.UpdateDiscount)
			admin.DELETE("/discounts/:discount_id", adminHandler.DeleteDiscount)

			admin.GET("/orders", adminHandler.ListOrders)
			admin.GET("/orders/:order_id", adminHandler.GetOrder)
		}
	}

	return &Server{router: router, db: db, cfg: cfg}, nil
}

// Run serves HTTP until the listener fails.
func (s *Server) Run() error {
	logger.Info("storefront server starting", zap.String("addr", s.cfg.ListenAddr))
	return s.router.Run(s.cfg.ListenAddr)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Close releases the durable store.
func (s *Server) Close() error {
	return s.db.Close()
}

// requestLogger logs each request with latency and status.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
