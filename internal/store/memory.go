package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/vyrodovalexey/avgui-demo/internal/model"
)

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithStartID sets the id given to the first item of an empty list.
func WithStartID(id int) Option {
	return func(s *MemoryStore) {
		if id > 0 {
			s.startID = id
		}
	}
}

// WithStrict makes invalid input and unknown ids return errors instead of
// leaving the list untouched and returning it.
func WithStrict(strict bool) Option {
	return func(s *MemoryStore) {
		s.strict = strict
	}
}

// MemoryStore implements Store with an in-memory list guarded by one mutex.
// Items are kept in insertion order; results are sorted on the way out.
type MemoryStore struct {
	mu      sync.Mutex
	items   []model.TodoItem
	startID int
	strict  bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		items:   make([]model.TodoItem, 0),
		startID: model.DefaultTodoStartID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch applies op to the list. See Store.Dispatch.
func (s *MemoryStore) Dispatch(
	ctx context.Context,
	op model.Operation,
	candidate model.TodoItem,
) ([]model.TodoItem, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s items: %w", op, ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.observe(op)

	switch op {
	case model.OpAdd:
		return s.add(candidate)
	case model.OpDelete:
		return s.delete(candidate.ID)
	case model.OpAll:
		return s.sorted(nil), nil
	case model.OpAllActive:
		return s.sorted(func(i model.TodoItem) bool { return !i.Completed }), nil
	case model.OpAllCompleted:
		return s.sorted(func(i model.TodoItem) bool { return i.Completed }), nil
	case model.OpClearCompleted:
		s.items = slices.DeleteFunc(s.items, func(i model.TodoItem) bool { return i.Completed })
		return s.sorted(nil), nil
	case model.OpToggleAll:
		for i := range s.items {
			s.items[i].Completed = candidate.Completed
		}
		return s.sorted(nil), nil
	case model.OpToggleItemComplete:
		return nil, s.toggle(candidate.ID, candidate.Completed)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownOperation, int(op))
	}
}

// ToggleItemComplete sets the completed flag of a single item.
func (s *MemoryStore) ToggleItemComplete(ctx context.Context, id int, completed bool) error {
	_, err := s.Dispatch(ctx, model.OpToggleItemComplete, model.TodoItem{ID: id, Completed: completed})
	return err
}

// add appends candidate under the next free id. Caller-supplied ids are ignored.
func (s *MemoryStore) add(candidate model.TodoItem) ([]model.TodoItem, error) {
	item := model.NewTodoItem(s.nextID(), candidate.Text, candidate.Completed)
	if !item.Valid() {
		if s.strict {
			return nil, fmt.Errorf("add item: %w", ErrInvalidItem)
		}
		return s.sorted(nil), nil
	}

	s.items = append(s.items, item)

	return s.sorted(nil), nil
}

func (s *MemoryStore) delete(id int) ([]model.TodoItem, error) {
	if id <= 0 {
		if s.strict {
			return nil, fmt.Errorf("delete item: %w", ErrInvalidID)
		}
		return s.sorted(nil), nil
	}

	idx := s.indexOf(id)
	if idx < 0 {
		if s.strict {
			return nil, fmt.Errorf("delete item %d: %w", id, ErrNotFound)
		}
		return s.sorted(nil), nil
	}

	s.items = slices.Delete(s.items, idx, idx+1)

	return s.sorted(nil), nil
}

func (s *MemoryStore) toggle(id int, completed bool) error {
	idx := s.indexOf(id)
	if idx < 0 {
		if s.strict {
			return fmt.Errorf("toggle item %d: %w", id, ErrNotFound)
		}
		return nil
	}

	s.items[idx].Completed = completed

	return nil
}

// nextID returns max(existing ids)+1, or the start id for an empty list.
func (s *MemoryStore) nextID() int {
	if len(s.items) == 0 {
		return s.startID
	}

	maxID := s.items[0].ID
	for _, item := range s.items[1:] {
		maxID = max(maxID, item.ID)
	}

	return maxID + 1
}

func (s *MemoryStore) indexOf(id int) int {
	return slices.IndexFunc(s.items, func(i model.TodoItem) bool { return i.ID == id })
}

// sorted returns a copy of the items accepted by keep (all when nil),
// newest first. The result is never nil.
func (s *MemoryStore) sorted(keep func(model.TodoItem) bool) []model.TodoItem {
	out := make([]model.TodoItem, 0, len(s.items))
	for _, item := range s.items {
		if keep == nil || keep(item) {
			out = append(out, item)
		}
	}

	slices.SortFunc(out, func(a, b model.TodoItem) int {
		return cmp.Compare(b.ID, a.ID)
	})

	return out
}

// observe records metrics for op. Must be called with s.mu held.
func (s *MemoryStore) observe(op model.Operation) {
	todoOperationsTotal.WithLabelValues(op.String()).Inc()
	todoItems.Set(float64(len(s.items)))
}
