// CLAUDE:SUMMARY In-memory surface registry — per-surface serialization, gapless versioning, ordered publish handoff.
package canvas

import (
	"fmt"
	"sync"
	"time"

	"github.com/hazyhaar/uijit/idgen"
)

// Store is the authoritative in-memory surface registry.
//
// Each surface carries two mutexes. The state mutex serializes
// read-modify-write cycles. The publish mutex is acquired before the state
// mutex is released (lock handoff), so the publish callback runs outside the
// state critical section while publish order still matches version order.
//
// Mutators must replace nested structures (component slices, data model
// maps), never modify them in place: returned snapshots share them.
type Store struct {
	gen idgen.Generator

	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
}

type entry struct {
	mu      sync.Mutex
	pubMu   sync.Mutex
	surface Surface
	closed  bool // set under mu by Remove; later mutations see ErrNotFound
}

// NewStore creates an empty store. A nil generator defaults to the
// timestamp-sortable surface ID format.
func NewStore(gen idgen.Generator) *Store {
	if gen == nil {
		gen = idgen.Surface()
	}
	return &Store{
		gen:     gen,
		entries: make(map[string]*entry),
	}
}

// Create registers a new surface at version 0 with an empty tree and data
// model. An empty id asks the store to generate one. init, when non-nil,
// seeds descriptive fields before the surface becomes visible.
func (s *Store) Create(id string, init func(*Surface)) (Surface, error) {
	if id == "" {
		id = s.gen()
	}

	now := time.Now()
	e := &entry{surface: Surface{
		ID:        id,
		Version:   0,
		DataModel: make(map[string]any),
		CreatedAt: now,
		UpdatedAt: now,
	}}
	if init != nil {
		init(&e.surface)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[id]; exists {
		return Surface{}, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	s.entries[id] = e
	s.order = append(s.order, id)
	return e.surface, nil
}

func (s *Store) lookup(id string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

// Get returns a point-in-time snapshot of a surface.
func (s *Store) Get(id string) (Surface, error) {
	e, err := s.lookup(id)
	if err != nil {
		return Surface{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface, nil
}

// Update applies mutate under the surface's state lock. On success the
// version increments by exactly one and publish (when non-nil) receives the
// post-mutation snapshot, ordered against all other publishes for this
// surface. A mutate error leaves state and version untouched. A surface
// already closed by Remove yields ErrNotFound, even through a handle looked
// up before the close.
func (s *Store) Update(id string, mutate func(*Surface) error, publish func(Surface)) (Surface, error) {
	e, err := s.lookup(id)
	if err != nil {
		return Surface{}, err
	}
	return e.update(id, mutate, publish)
}

func (e *entry) update(id string, mutate func(*Surface) error, publish func(Surface)) (Surface, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return Surface{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := mutate(&e.surface); err != nil {
		e.mu.Unlock()
		return Surface{}, err
	}
	e.surface.Version++
	e.surface.UpdatedAt = time.Now()
	snap := e.surface

	e.pubMu.Lock()
	e.mu.Unlock()
	if publish != nil {
		publish(snap)
	}
	e.pubMu.Unlock()

	return snap, nil
}

// Remove closes a surface. Closing is not a mutation: the snapshot handed to
// publish keeps the version of the last accepted update. The entry is marked
// closed and published first, and only evicted from the registry once publish
// returns, so a close notification always precedes disappearance. A second
// Remove, or any Update/View racing past the close, sees ErrNotFound.
func (s *Store) Remove(id string, publish func(Surface)) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.closed = true
	snap := e.surface

	e.pubMu.Lock()
	e.mu.Unlock()
	if publish != nil {
		publish(snap)
	}
	e.pubMu.Unlock()

	s.mu.Lock()
	delete(s.entries, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	return nil
}

// View runs fn with a snapshot while holding the surface's publish lock.
// Nothing can publish for this surface while fn runs, which lets a caller
// attach a subscriber and seed it with the snapshot without missing or
// reordering updates.
func (s *Store) View(id string, fn func(Surface)) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	return e.view(id, fn)
}

func (e *entry) view(id string, fn func(Surface)) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	snap := e.surface
	e.pubMu.Lock()
	e.mu.Unlock()
	fn(snap)
	e.pubMu.Unlock()

	return nil
}

// List returns snapshots of all surfaces in creation order.
func (s *Store) List() []Surface {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.order))
	for _, id := range s.order {
		entries = append(entries, s.entries[id])
	}
	s.mu.RUnlock()

	out := make([]Surface, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.surface)
		e.mu.Unlock()
	}
	return out
}

// Len returns the number of live surfaces.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
