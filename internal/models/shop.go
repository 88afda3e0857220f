package models

import (
	"fmt"
	"time"
)

// Shop represents a point-of-sale location owning ingredients and menu items
type Shop struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidateShop validates a shop document
func ValidateShop(s *Shop) error {
	if s.Name == "" {
		return fmt.Errorf("shop name is required")
	}
	return nil
}
