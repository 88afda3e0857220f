package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tillpoint/internal/inventory"
	"tillpoint/internal/models"
	"tillpoint/internal/monitoring"
	"tillpoint/internal/store"
)

type placeOrderItem struct {
	MenuItemID string `json:"menu_item_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
	Notes      string `json:"notes"`
}

type placeOrderRequest struct {
	ShopID    string           `json:"shop_id"`
	CreatedBy string           `json:"created_by"`
	Notes     string           `json:"notes"`
	Items     []placeOrderItem `json:"items" binding:"required,min=1"`
}

// PlaceOrder validates the order lines, runs the consumption transaction and
// records the order. Any engine rejection leaves stock untouched and the
// order unrecorded.
func (s *Server) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.metrics.RecordOrderRejected(monitoring.ReasonInvalidRequest)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	lines := make([]inventory.OrderLine, 0, len(req.Items))
	orderItems := make([]models.OrderItem, 0, len(req.Items))
	total := decimal.Zero
	for _, item := range req.Items {
		var menuItem models.MenuItem
		if err := s.store.Get(ctx, store.CollectionMenuItems, item.MenuItemID, &menuItem); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				s.metrics.RecordOrderRejected(monitoring.ReasonInvalidRequest)
				c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found", "menu_item_id": item.MenuItemID})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		lines = append(lines, inventory.OrderLine{MenuItem: menuItem, Quantity: item.Quantity})
		orderItem := models.OrderItem{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Category:   menuItem.Category,
			Quantity:   item.Quantity,
			UnitPrice:  menuItem.Price,
			Notes:      item.Notes,
			CreatedBy:  req.CreatedBy,
		}
		orderItems = append(orderItems, orderItem)
		total = total.Add(orderItem.LineTotal())
	}

	started := time.Now()
	snapshots, alerts, err := s.engine.Consume(ctx, lines)
	s.metrics.ObserveConsumption(time.Since(started))
	if err != nil {
		s.rejectOrder(c, err)
		return
	}

	now := time.Now()
	order := models.Order{
		ID:        uuid.NewString(),
		ShopID:    req.ShopID,
		Items:     orderItems,
		Status:    models.OrderStatusPlaced,
		Total:     total,
		CreatedBy: req.CreatedBy,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Set(ctx, store.CollectionOrders, order.ID, order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.metrics.RecordOrderPlaced()
	if s.hub != nil {
		s.hub.BroadcastStock(snapshots)
		s.hub.BroadcastAlerts(alerts)
	}
	s.refreshLowStockGauge(c)

	c.JSON(http.StatusCreated, gin.H{"order": order, "alerts": alerts})
}

// rejectOrder maps the engine error taxonomy onto HTTP responses
func (s *Server) rejectOrder(c *gin.Context, err error) {
	var insufficient *models.InsufficientStockError
	var incompatible *models.UnitIncompatibleError
	var notFound *inventory.IngredientNotFoundError
	var invalidLine *inventory.InvalidOrderLineError

	switch {
	case errors.As(err, &insufficient):
		s.metrics.RecordOrderRejected(monitoring.ReasonInsufficientStock)
		c.JSON(http.StatusConflict, gin.H{
			"error":      "insufficient stock",
			"ingredient": insufficient.Name,
			"required":   insufficient.Required,
			"available":  insufficient.Available,
		})
	case errors.As(err, &incompatible):
		s.metrics.RecordOrderRejected(monitoring.ReasonUnitIncompatible)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "incompatible measurement units",
			"from":  incompatible.From,
			"to":    incompatible.To,
		})
	case errors.As(err, &notFound):
		s.metrics.RecordOrderRejected(monitoring.ReasonIngredientNotFound)
		c.JSON(http.StatusConflict, gin.H{
			"error":         "ingredient no longer exists",
			"ingredient_id": notFound.IngredientID,
		})
	case errors.As(err, &invalidLine):
		s.metrics.RecordOrderRejected(monitoring.ReasonInvalidRequest)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrTransientFailure):
		s.metrics.RecordOrderRejected(monitoring.ReasonTransientFailure)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// GetOrder returns a previously placed order
func (s *Server) GetOrder(c *gin.Context) {
	var order models.Order
	if err := s.store.Get(c.Request.Context(), store.CollectionOrders, c.Param("id"), &order); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

// refreshLowStockGauge recounts low-stock ingredients for the metrics gauge
func (s *Server) refreshLowStockGauge(c *gin.Context) {
	if s.metrics == nil {
		return
	}
	snapshot, err := s.engine.StockSnapshot(c.Request.Context())
	if err != nil {
		return
	}
	count := 0
	for _, stock := range snapshot {
		if stock.IsLowStock() {
			count++
		}
	}
	s.metrics.SetLowStockCount(count)
}
