// Package store provides the keyed document store the engine persists into:
// plain Get/Set access per collection plus an atomic transaction primitive
// with retry-on-conflict semantics.
package store

import (
	"context"
	"errors"
)

// Collection names used across the application
const (
	CollectionIngredients = "ingredients"
	CollectionMenuItems   = "menu_items"
	CollectionOrders      = "orders"
	CollectionShops       = "shops"
)

var (
	// ErrNotFound indicates the requested document does not exist
	ErrNotFound = errors.New("store: document not found")
	// ErrConflict indicates a transaction lost its write race and exhausted
	// its retries
	ErrConflict = errors.New("store: transaction conflict, retries exhausted")
)

// Store represents the persistence contract consumed by the engine and the
// API layer. Documents are JSON-encoded values keyed by collection and id.
type Store interface {
	Get(ctx context.Context, collection, id string, out interface{}) error
	Set(ctx context.Context, collection, id string, doc interface{}) error
	Delete(ctx context.Context, collection, id string) error
	// List returns the raw JSON of every document in a collection, keyed by id.
	List(ctx context.Context, collection string) (map[string][]byte, error)

	// RunTransaction executes fn atomically. The closure may be re-executed
	// transparently when a concurrent commit touches a document it read, so
	// it must be free of external side effects. An error returned by fn
	// aborts the transaction without retrying; ErrConflict is returned once
	// retries are exhausted.
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
}

// Tx represents the read/write scope of one atomic transaction
type Tx interface {
	Get(collection, id string, out interface{}) error
	Set(collection, id string, doc interface{}) error
}

const (
	defaultTxAttempts  = 5
	defaultTxBackoffMS = 25
)
