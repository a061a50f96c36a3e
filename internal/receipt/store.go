package receipt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Store is the ordered, durable collection of receipts, newest first.
// Every mutation is written through to the medium before returning.
type Store struct {
	mu       sync.RWMutex
	medium   Medium
	receipts []Receipt
	ids      map[string]struct{}

	// readOnly is set when unreadable state could not be set aside
	readOnly bool
}

// NewStore creates an empty Store backed by medium. Call Load to restore saved state.
func NewStore(medium Medium) *Store {
	return &Store{
		medium:   medium,
		receipts: make([]Receipt, 0),
		ids:      make(map[string]struct{}),
	}
}

// Load replaces the in-memory collection with the persisted one. Unreadable or
// malformed state leaves the store empty and usable; the returned error only
// reports what was discarded. Unreadable state is set aside on the medium so
// later writes cannot replace it. If that fails, the store stops writing.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.receipts = make([]Receipt, 0)
	s.ids = make(map[string]struct{})
	s.readOnly = false

	data, err := s.medium.ReadState()
	if err != nil {
		slog.Warn("Failed to read saved receipts, starting empty", "error", err)
		s.setAside()
		return fmt.Errorf("%w: reading state: %w", ErrPersistenceUnavailable, err)
	}
	if len(data) == 0 {
		return nil
	}

	var saved []Receipt
	if err := json.Unmarshal(data, &saved); err != nil {
		slog.Warn("Saved receipts are corrupt, starting empty", "error", err, "size", len(data))
		s.setAside()
		return fmt.Errorf("%w: decoding state: %w", ErrPersistenceUnavailable, err)
	}

	for _, r := range saved {
		if _, dup := s.ids[r.ID]; dup {
			slog.Warn("Skipping saved receipt with duplicate id", "id", r.ID)
			continue
		}
		if err := checkStored(r); err != nil {
			slog.Warn("Skipping invalid saved receipt", "id", r.ID, "error", err)
			continue
		}
		s.ids[r.ID] = struct{}{}
		s.receipts = append(s.receipts, r)
	}

	slog.Info("Loaded receipts", "count", len(s.receipts))
	return nil
}

// setAside moves unreadable state out of the way. Callers hold s.mu.
func (s *Store) setAside() {
	key, err := s.medium.SetAside()
	if err != nil {
		slog.Error("Failed to set aside unreadable receipts, changes will not be saved", "error", err)
		s.readOnly = true
		return
	}
	if key != "" {
		slog.Warn("Set aside unreadable receipts", "key", key)
	}
}

// Insert adds r as the newest receipt. IDs are always generated by the
// validator, so a collision is a bug and panics.
func (s *Store) Insert(r Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.ids[r.ID]; dup {
		panic(fmt.Sprintf("receipt: duplicate id %q", r.ID))
	}

	receipts := make([]Receipt, 0, len(s.receipts)+1)
	receipts = append(receipts, r)
	s.receipts = append(receipts, s.receipts...)
	s.ids[r.ID] = struct{}{}

	return s.persist()
}

// Delete removes the receipt with id. Unknown ids are ignored.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; !ok {
		return nil
	}

	receipts := make([]Receipt, 0, len(s.receipts)-1)
	for _, r := range s.receipts {
		if r.ID != id {
			receipts = append(receipts, r)
		}
	}
	s.receipts = receipts
	delete(s.ids, id)

	return s.persist()
}

// List returns a snapshot of all receipts, newest first
func (s *Store) List() []Receipt {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Receipt, len(s.receipts))
	copy(out, s.receipts)
	return out
}

// Get returns the receipt with id
func (s *Store) Get(id string) (Receipt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.receipts {
		if r.ID == id {
			return r, true
		}
	}
	return Receipt{}, false
}

// persist writes the whole collection. Callers hold s.mu.
func (s *Store) persist() error {
	if s.readOnly {
		return fmt.Errorf("%w: unreadable state on the medium was not set aside", ErrPersistenceUnavailable)
	}
	data, err := json.Marshal(s.receipts)
	if err != nil {
		return fmt.Errorf("%w: encoding state: %w", ErrPersistenceUnavailable, err)
	}
	if err := s.medium.WriteState(data); err != nil {
		slog.Warn("Failed to save receipts, keeping changes in memory", "error", err, "count", len(s.receipts))
		return fmt.Errorf("%w: writing state: %w", ErrPersistenceUnavailable, err)
	}
	return nil
}
