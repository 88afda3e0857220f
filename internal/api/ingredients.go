package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tillpoint/internal/inventory"
	"tillpoint/internal/models"
	"tillpoint/internal/store"
)

// ingredientView decorates a stock snapshot with its derived reads
type ingredientView struct {
	models.IngredientStock
	TotalMeasurement decimal.Decimal `json:"total_measurement"`
	Available        decimal.Decimal `json:"available"`
	IsLowStock       bool            `json:"is_low_stock"`
}

func viewOf(stock models.IngredientStock) ingredientView {
	return ingredientView{
		IngredientStock:  stock,
		TotalMeasurement: stock.TotalMeasurement(),
		Available:        stock.Available(),
		IsLowStock:       stock.IsLowStock(),
	}
}

// ListIngredients returns every ingredient, sorted by name
func (s *Server) ListIngredients(c *gin.Context) {
	raw, err := s.store.List(c.Request.Context(), store.CollectionIngredients)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	views := make([]ingredientView, 0, len(raw))
	for _, data := range raw {
		var stock models.IngredientStock
		if err := json.Unmarshal(data, &stock); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		views = append(views, viewOf(stock))
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	c.JSON(http.StatusOK, views)
}

type createIngredientRequest struct {
	ShopID             string                  `json:"shop_id"`
	Name               string                  `json:"name" binding:"required"`
	Quantity           decimal.Decimal         `json:"quantity"`
	MeasurementPerUnit models.MeasurementValue `json:"measurement_per_unit" binding:"required"`
	MinQuantity        decimal.Decimal         `json:"min_quantity"`
	CostPrice          decimal.Decimal         `json:"cost_price"`
}

// CreateIngredient creates a new stock ledger entry
func (s *Server) CreateIngredient(c *gin.Context) {
	var req createIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	now := time.Now()
	stock := models.IngredientStock{
		ID:                 uuid.NewString(),
		ShopID:             req.ShopID,
		Name:               req.Name,
		Quantity:           req.Quantity,
		MeasurementPerUnit: req.MeasurementPerUnit,
		Used:               decimal.Zero,
		MinQuantity:        req.MinQuantity,
		CostPrice:          req.CostPrice,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := models.ValidateIngredientStock(&stock); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.Set(c.Request.Context(), store.CollectionIngredients, stock.ID, stock); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, viewOf(stock))
}

// GetIngredient returns one ingredient with derived fields
func (s *Server) GetIngredient(c *gin.Context) {
	var stock models.IngredientStock
	err := s.store.Get(c.Request.Context(), store.CollectionIngredients, c.Param("id"), &stock)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ingredient not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, viewOf(stock))
}

type updateIngredientRequest struct {
	Name        *string          `json:"name"`
	MinQuantity *decimal.Decimal `json:"min_quantity"`
	CostPrice   *decimal.Decimal `json:"cost_price"`
}

// UpdateIngredient edits descriptive fields. Quantity and usage move only
// through restock, consumption and reset-usage.
func (s *Server) UpdateIngredient(c *gin.Context) {
	var req updateIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	var stock models.IngredientStock
	if err := s.store.Get(ctx, store.CollectionIngredients, c.Param("id"), &stock); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ingredient not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if req.Name != nil {
		stock.Name = *req.Name
	}
	if req.MinQuantity != nil {
		stock.MinQuantity = *req.MinQuantity
	}
	if req.CostPrice != nil {
		stock.CostPrice = *req.CostPrice
	}
	stock.UpdatedAt = time.Now()
	if err := models.ValidateIngredientStock(&stock); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.Set(ctx, store.CollectionIngredients, stock.ID, stock); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, viewOf(stock))
}

// DeleteIngredient removes an ingredient from the ledger
func (s *Server) DeleteIngredient(c *gin.Context) {
	err := s.store.Delete(c.Request.Context(), store.CollectionIngredients, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ingredient not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ingredient deleted"})
}

type restockRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// RestockIngredient adds packs to an ingredient's quantity
func (s *Server) RestockIngredient(c *gin.Context) {
	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stock, err := s.engine.Restock(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		s.ingredientError(c, err)
		return
	}
	if s.hub != nil {
		s.hub.BroadcastStock([]models.IngredientStock{stock})
	}
	c.JSON(http.StatusOK, viewOf(stock))
}

// ResetIngredientUsage clears an ingredient's cumulative consumption
func (s *Server) ResetIngredientUsage(c *gin.Context) {
	stock, err := s.engine.ResetUsage(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.ingredientError(c, err)
		return
	}
	if s.hub != nil {
		s.hub.BroadcastStock([]models.IngredientStock{stock})
	}
	c.JSON(http.StatusOK, viewOf(stock))
}

// LowStockIngredients returns alerts for every ingredient at or below its
// restock threshold
func (s *Server) LowStockIngredients(c *gin.Context) {
	snapshot, err := s.engine.StockSnapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	stocks := make([]models.IngredientStock, 0, len(snapshot))
	for _, stock := range snapshot {
		stocks = append(stocks, stock)
	}
	sort.Slice(stocks, func(i, j int) bool { return stocks[i].Name < stocks[j].Name })
	alerts := inventory.LowStockAlerts(stocks)
	s.metrics.SetLowStockCount(len(alerts))
	c.JSON(http.StatusOK, alerts)
}

func (s *Server) ingredientError(c *gin.Context, err error) {
	var notFound *inventory.IngredientNotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ingredient not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
