package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tillpoint/internal/models"
	"tillpoint/internal/store"
)

// ListShops returns every shop
func (s *Server) ListShops(c *gin.Context) {
	raw, err := s.store.List(c.Request.Context(), store.CollectionShops)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	shops := make([]models.Shop, 0, len(raw))
	for _, data := range raw {
		var shop models.Shop
		if err := json.Unmarshal(data, &shop); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		shops = append(shops, shop)
	}
	sort.Slice(shops, func(i, j int) bool { return shops[i].Name < shops[j].Name })
	c.JSON(http.StatusOK, shops)
}

// CreateShop registers a new shop
func (s *Server) CreateShop(c *gin.Context) {
	var shop models.Shop
	if err := c.ShouldBindJSON(&shop); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := models.ValidateShop(&shop); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	shop.ID = uuid.NewString()
	now := time.Now()
	shop.CreatedAt = now
	shop.UpdatedAt = now
	if err := s.store.Set(c.Request.Context(), store.CollectionShops, shop.ID, shop); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, shop)
}

// GetShop returns one shop
func (s *Server) GetShop(c *gin.Context) {
	var shop models.Shop
	err := s.store.Get(c.Request.Context(), store.CollectionShops, c.Param("id"), &shop)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shop not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, shop)
}
