package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillpoint/internal/inventory"
	"tillpoint/internal/monitoring"
	"tillpoint/internal/notify"
	"tillpoint/internal/store"
)

// Server represents the point-of-sale HTTP API
type Server struct {
	Router  *gin.Engine
	store   store.Store
	engine  *inventory.Engine
	metrics *monitoring.Collector
	hub     *notify.Hub
	secret  string
}

// NewServer creates a server over the given store. The metrics collector and
// hub may be nil; an empty secret disables authentication (local development
// and tests).
func NewServer(st store.Store, metrics *monitoring.Collector, hub *notify.Hub, authSecret string) *Server {
	s := &Server{
		Router:  gin.Default(),
		store:   st,
		engine:  inventory.NewEngine(st),
		metrics: metrics,
		hub:     hub,
		secret:  authSecret,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if s.hub != nil {
		s.Router.GET("/ws", s.hub.HandleWS)
	}

	v1 := s.Router.Group("/api/v1")
	if s.secret != "" {
		v1.Use(AuthMiddleware(s.secret))
	}
	{
		// Order placement and lookup
		v1.POST("/orders", s.PlaceOrder)
		v1.GET("/orders/:id", s.GetOrder)

		// Ingredient stock management
		v1.GET("/ingredients", s.ListIngredients)
		v1.POST("/ingredients", s.CreateIngredient)
		v1.GET("/ingredients/low-stock", s.LowStockIngredients)
		v1.GET("/ingredients/:id", s.GetIngredient)
		v1.PUT("/ingredients/:id", s.UpdateIngredient)
		v1.DELETE("/ingredients/:id", s.DeleteIngredient)
		v1.POST("/ingredients/:id/restock", s.RestockIngredient)
		v1.POST("/ingredients/:id/reset-usage", s.ResetIngredientUsage)

		// Menu management
		v1.GET("/menu", s.ListMenuItems)
		v1.POST("/menu", s.CreateMenuItem)
		v1.GET("/menu/:id", s.GetMenuItem)
		v1.PUT("/menu/:id", s.UpdateMenuItem)
		v1.DELETE("/menu/:id", s.DeleteMenuItem)
		v1.POST("/menu/:id/refresh-availability", s.RefreshMenuItemAvailability)

		// Shops
		v1.GET("/shops", s.ListShops)
		v1.POST("/shops", s.CreateShop)
		v1.GET("/shops/:id", s.GetShop)
	}
}
