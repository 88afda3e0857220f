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

	"tillpoint/internal/models"
	"tillpoint/internal/store"
)

// ListMenuItems returns the full menu, sorted by name
func (s *Server) ListMenuItems(c *gin.Context) {
	raw, err := s.store.List(c.Request.Context(), store.CollectionMenuItems)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	items := make([]models.MenuItem, 0, len(raw))
	for _, data := range raw {
		var item models.MenuItem
		if err := json.Unmarshal(data, &item); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	c.JSON(http.StatusOK, items)
}

type menuItemRequest struct {
	ShopID      string          `json:"shop_id"`
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Recipe      []models.Recipe `json:"recipe"`
}

// CreateMenuItem adds a menu item with its recipe list
func (s *Server) CreateMenuItem(c *gin.Context) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	now := time.Now()
	item := models.MenuItem{
		ID:          uuid.NewString(),
		ShopID:      req.ShopID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Recipe:      req.Recipe,
		IsAvailable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := models.ValidateMenuItem(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.Set(c.Request.Context(), store.CollectionMenuItems, item.ID, item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetMenuItem returns one menu item
func (s *Server) GetMenuItem(c *gin.Context) {
	var item models.MenuItem
	err := s.store.Get(c.Request.Context(), store.CollectionMenuItems, c.Param("id"), &item)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateMenuItem edits a menu item, including its recipe list
func (s *Server) UpdateMenuItem(c *gin.Context) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	var item models.MenuItem
	if err := s.store.Get(ctx, store.CollectionMenuItems, c.Param("id"), &item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	item.Name = req.Name
	item.Description = req.Description
	item.Category = req.Category
	item.Price = req.Price
	item.Recipe = req.Recipe
	item.UpdatedAt = time.Now()
	if err := models.ValidateMenuItem(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.Set(ctx, store.CollectionMenuItems, item.ID, item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteMenuItem removes a menu item
func (s *Server) DeleteMenuItem(c *gin.Context) {
	err := s.store.Delete(c.Request.Context(), store.CollectionMenuItems, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
}

// RefreshMenuItemAvailability recomputes the cached availability flag
// against the current stock snapshot
func (s *Server) RefreshMenuItemAvailability(c *gin.Context) {
	available, err := s.engine.RefreshAvailability(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_available": available})
}
