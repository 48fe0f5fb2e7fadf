package game

import (
	"void-arena/internal/physics"
)

// EntityID identifies a record inside one store.
type EntityID uint64

// entityBase carries the identity and physics body shared by every
// body-backed record. Only the owning Store assigns it.
type entityBase struct {
	id   EntityID
	body physics.Handle
}

func (e *entityBase) ID() EntityID { return e.id }

func (e *entityBase) Body() physics.Handle { return e.body }

func (e *entityBase) bind(id EntityID, h physics.Handle) {
	e.id = id
	e.body = h
}

// Entity is a record paired 1:1 with a physics body.
type Entity interface {
	ID() EntityID
	Body() physics.Handle
	bind(id EntityID, h physics.Handle)
}

// Store owns records of one kind together with their physics bodies.
// A record and its body are created and destroyed in the same call.
type Store[T Entity] struct {
	world    *physics.World
	items    []T
	nextID   EntityID
	capacity int // 0 = unbounded
}

// NewStore creates a store backed by world. capacity <= 0 means unbounded.
func NewStore[T Entity](world *physics.World, capacity int) *Store[T] {
	return &Store[T]{
		world:    world,
		items:    make([]T, 0, max(capacity, 8)),
		capacity: capacity,
	}
}

// Spawn creates body and binds it to rec. Returns false (and creates
// nothing) when the store is at capacity.
func (s *Store[T]) Spawn(body physics.Body, rec T) (T, bool) {
	if s.capacity > 0 && len(s.items) >= s.capacity {
		var zero T
		return zero, false
	}

	s.nextID++
	rec.bind(s.nextID, s.world.Add(body))
	s.items = append(s.items, rec)
	return rec, true
}

// Despawn removes the record and retires its body.
func (s *Store[T]) Despawn(id EntityID) bool {
	for i, rec := range s.items {
		if rec.ID() != id {
			continue
		}
		s.world.Remove(rec.Body())
		copy(s.items[i:], s.items[i+1:])
		var zero T
		s.items[len(s.items)-1] = zero
		s.items = s.items[:len(s.items)-1]
		return true
	}
	return false
}

// Get returns the record with id.
func (s *Store[T]) Get(id EntityID) (T, bool) {
	for _, rec := range s.items {
		if rec.ID() == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// Has reports whether id is live.
func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.Get(id)
	return ok
}

// Len returns the number of live records.
func (s *Store[T]) Len() int {
	return len(s.items)
}

// Items returns an insertion-ordered copy, safe to iterate while despawning.
func (s *Store[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// BodyOf resolves the record's physics body, nil if it has gone stale.
func (s *Store[T]) BodyOf(rec T) *physics.Body {
	return s.world.Get(rec.Body())
}

// Purge removes every record and its body.
func (s *Store[T]) Purge() {
	var zero T
	for i, rec := range s.items {
		s.world.Remove(rec.Body())
		s.items[i] = zero
	}
	s.items = s.items[:0]
}
