package inventory

import (
	"errors"
	"fmt"
)

// ErrTransientFailure indicates the consumption transaction kept losing its
// write race and exhausted its retries; the caller may resubmit the order.
var ErrTransientFailure = errors.New("inventory: consumption could not be committed, please retry")

// IngredientNotFoundError indicates a recipe references an ingredient that
// is absent from the store at consumption time (deleted between menu display
// and order submission). Treated like insufficiency: the order is rejected.
type IngredientNotFoundError struct {
	IngredientID string
}

func (e *IngredientNotFoundError) Error() string {
	return fmt.Sprintf("ingredient %s not found", e.IngredientID)
}

// InvalidOrderLineError indicates a malformed order line rejected before any
// stock was touched
type InvalidOrderLineError struct {
	MenuItemID string
	Reason     string
}

func (e *InvalidOrderLineError) Error() string {
	return fmt.Sprintf("invalid order line for menu item %s: %s", e.MenuItemID, e.Reason)
}
