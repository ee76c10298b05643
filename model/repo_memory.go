package model

import (
	"context"
	"sync"
)

// MemoryRepository keeps all notes in one ordered slice for the lifetime of
// the process. The mutex only guards the slice against concurrent handler
// goroutines; no ordering between requests is implied.
type MemoryRepository struct {
	mu    sync.RWMutex
	notes []Note
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) List(_ context.Context, id *int64) ([]Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Note, 0, len(r.notes))
	for _, n := range r.notes {
		if id == nil || n.ID == *id {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *MemoryRepository) Insert(_ context.Context, n Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append([]Note{n}, r.notes...)
	return nil
}

func (r *MemoryRepository) Replace(_ context.Context, n Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notes {
		if r.notes[i].ID == n.ID {
			r.notes[i] = n
		}
	}
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.notes[:0]
	for _, n := range r.notes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	clear(r.notes[len(kept):])
	r.notes = kept
	return nil
}

func (r *MemoryRepository) Seed(_ context.Context, notes []Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) > 0 {
		return nil
	}
	r.notes = append([]Note(nil), notes...)
	return nil
}

func (r *MemoryRepository) Close(context.Context) error { return nil }
