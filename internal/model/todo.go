// Package model defines data structures used throughout the application.
package model

import (
	"strings"
	"time"
)

// DefaultTodoStartID is the id assigned to the first item of an empty list.
const DefaultTodoStartID = 1000

// TodoItem is a single entry of the to-do list.
type TodoItem struct {
	ID        int       `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewTodoItem creates an item stamped with the current UTC time.
func NewTodoItem(id int, text string, completed bool) TodoItem {
	return TodoItem{
		ID:        id,
		Text:      text,
		Completed: completed,
		CreatedAt: time.Now().UTC(),
	}
}

// Valid reports whether the item has a positive id and non-blank text.
func (t TodoItem) Valid() bool {
	return t.ID > 0 && strings.TrimSpace(t.Text) != ""
}

// Operation is an action requested against the to-do list.
type Operation int

// Supported operations.
const (
	OpAdd Operation = iota
	OpDelete
	OpAll
	OpAllActive
	OpAllCompleted
	OpClearCompleted
	OpToggleAll
	OpToggleItemComplete
)

var operationNames = map[Operation]string{
	OpAdd:                "add",
	OpDelete:             "delete",
	OpAll:                "all",
	OpAllActive:          "allactive",
	OpAllCompleted:       "allcompleted",
	OpClearCompleted:     "clearcompleted",
	OpToggleAll:          "toggleall",
	OpToggleItemComplete: "toggleitemcomplete",
}

var operationsByName = func() map[string]Operation {
	m := make(map[string]Operation, len(operationNames))
	for op, name := range operationNames {
		m[name] = op
	}
	return m
}()

// String returns the wire tag of the operation.
func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return "unknown"
}

// ReturnsList reports whether the operation yields the resulting list.
func (o Operation) ReturnsList() bool {
	return o != OpToggleItemComplete
}

// ParseOperation maps a case-insensitive wire tag to an Operation.
func ParseOperation(name string) (Operation, bool) {
	op, ok := operationsByName[strings.ToLower(strings.TrimSpace(name))]
	return op, ok
}

// Operations returns every supported operation in declaration order.
func Operations() []Operation {
	return []Operation{
		OpAdd,
		OpDelete,
		OpAll,
		OpAllActive,
		OpAllCompleted,
		OpClearCompleted,
		OpToggleAll,
		OpToggleItemComplete,
	}
}
