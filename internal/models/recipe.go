package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Recipe represents the requirement of one ingredient, in its own unit, for
// one unit of a menu item. The ingredient is a weak reference looked up by
// id at evaluation time; no ingredient data is denormalized onto the recipe.
type Recipe struct {
	IngredientID   string           `json:"ingredient_id"`
	RequiredAmount MeasurementValue `json:"required_amount"`
}

// ValidateRecipe validates a single recipe line
func ValidateRecipe(r *Recipe) error {
	if r.IngredientID == "" {
		return fmt.Errorf("recipe ingredient id is required")
	}
	if !r.RequiredAmount.Unit.Valid() {
		return fmt.Errorf("unknown measurement unit %q", r.RequiredAmount.Unit)
	}
	if r.RequiredAmount.Value.Sign() <= 0 {
		return fmt.Errorf("recipe required amount must be positive, got %s", r.RequiredAmount.Value)
	}
	return nil
}

// MenuItem represents a sellable item on the menu
type MenuItem struct {
	ID          string          `json:"id"`
	ShopID      string          `json:"shop_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Recipe      []Recipe        `json:"recipe"`
	// IsAvailable is a cached flag, recomputed explicitly against a stock
	// snapshot; UpdatedAt changes only when the flag actually flips.
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MenuCategory represents the category of a menu item
type MenuCategory string

const (
	// Menu categories
	MenuCategoryFood      MenuCategory = "food"
	MenuCategoryDrink     MenuCategory = "drink"
	MenuCategoryDessert   MenuCategory = "dessert"
	MenuCategorySide      MenuCategory = "side"
	MenuCategorySpecialty MenuCategory = "specialty"
)

// ValidateMenuItem validates a menu item and its recipe list
func ValidateMenuItem(item *MenuItem) error {
	if item.Name == "" {
		return fmt.Errorf("menu item name is required")
	}
	if item.Price.Sign() <= 0 {
		return fmt.Errorf("menu item price must be greater than 0")
	}
	for i := range item.Recipe {
		if err := ValidateRecipe(&item.Recipe[i]); err != nil {
			return fmt.Errorf("recipe line %d: %w", i, err)
		}
	}
	return nil
}
