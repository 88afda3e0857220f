package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a placed point-of-sale order
type Order struct {
	ID        string          `json:"id"`
	ShopID    string          `json:"shop_id"`
	Items     []OrderItem     `json:"items"`
	Status    OrderStatus     `json:"status"`
	Total     decimal.Decimal `json:"total"`
	CreatedBy string          `json:"created_by"`
	Notes     string          `json:"notes"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OrderItem represents one line of an order
type OrderItem struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Notes      string          `json:"notes"`
	CreatedBy  string          `json:"created_by"`
}

// OrderStatus represents the possible states of an order
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidateOrderItem validates a single order line before any stock is touched
func ValidateOrderItem(item *OrderItem) error {
	if item.MenuItemID == "" {
		return fmt.Errorf("order item menu item id is required")
	}
	if item.Quantity <= 0 {
		return fmt.Errorf("order item quantity must be positive, got %d", item.Quantity)
	}
	return nil
}

// LineTotal returns quantity times unit price
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
