// Package store provides the in-memory to-do list and its operation dispatch.
package store

import (
	"context"
	"errors"

	"github.com/vyrodovalexey/avgui-demo/internal/model"
)

// Store errors.
var (
	ErrNotFound         = errors.New("todo item not found")
	ErrInvalidID        = errors.New("invalid todo item ID")
	ErrInvalidItem      = errors.New("todo item text cannot be empty")
	ErrUnknownOperation = errors.New("unknown todo operation")
)

// Store defines the to-do list operations.
type Store interface {
	// Dispatch applies op to the list as a single atomic step and returns the
	// resulting items ordered by descending id. Operations that do not yield a
	// list (see model.Operation.ReturnsList) return a nil slice.
	Dispatch(ctx context.Context, op model.Operation, candidate model.TodoItem) ([]model.TodoItem, error)

	// ToggleItemComplete sets the completed flag of the item with the given id.
	ToggleItemComplete(ctx context.Context, id int, completed bool) error
}
