package model

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"
)

// Note is a single user-authored text entry. ID is supplied by the client
// (usually a millisecond timestamp) and is neither unique nor tied to an
// owner. Owner is the email address recorded at creation or update time.
type Note struct {
	ID      int64   `json:"id"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Date    string  `json:"date"` // YYYY-MM-DD
	Owner   *string `json:"owner,omitempty"`
}

// Listing is the result of ListNotes. Wow is the access flag the notes view
// branches on; the notes are returned whether or not it is set.
type Listing struct {
	Wow   bool   `json:"wow"`
	Notes []Note `json:"notes"`
}

// ListNotes returns every note whose ID equals the numeric value of filter,
// or all notes when filter is nil or empty. A filter that is not a number
// matches nothing.
func (s *Store) ListNotes(ctx context.Context, filter *string) (*Listing, error) {
	s.simulateLatency()

	var (
		notes []Note
		err   error
	)
	if filter == nil || *filter == "" {
		notes, err = s.repo.List(ctx, nil)
	} else if id, ok := parseNoteID(*filter); ok {
		notes, err = s.repo.List(ctx, &id)
	}
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []Note{}
	}
	return &Listing{Wow: ReservedFlag(filter), Notes: notes}, nil
}

// CreateNote stores n in front of all existing notes and returns it
// unchanged. No server-side id is assigned.
func (s *Store) CreateNote(ctx context.Context, n Note) (Note, error) {
	s.simulateLatency()
	if err := s.repo.Insert(detach(ctx), n); err != nil {
		return Note{}, err
	}
	return n, nil
}

// UpdateNote replaces every note with n.ID by n. Updating an id that is not
// stored is a no-op.
func (s *Store) UpdateNote(ctx context.Context, n Note) (Note, error) {
	s.simulateLatency()
	if err := s.repo.Replace(detach(ctx), n); err != nil {
		return Note{}, err
	}
	return n, nil
}

// DeleteNote removes every note with the given id and returns the id.
// Deleting an id that is not stored is a no-op.
func (s *Store) DeleteNote(ctx context.Context, id int64) (int64, error) {
	s.simulateLatency()
	if err := s.repo.Delete(detach(ctx), id); err != nil {
		return 0, err
	}
	return id, nil
}

// simulateLatency models a remote datastore. The timer is not tied to the
// request: a caller that goes away does not stop the following mutation.
func (s *Store) simulateLatency() {
	if s.latency > 0 {
		time.Sleep(s.latency)
	}
}

// detach keeps request values but drops cancellation, so mutations complete
// even after the client disconnected.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

// parseNoteID converts a query value to a note id the way a browser's
// Number() would for the values that can match: blank input is 0, decimal
// (optionally with exponent) and 0x/0o/0b prefixed integers without digit
// separators.
func parseNoteID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	if strings.ContainsRune(s, '_') {
		return 0, false
	}
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			v, err := strconv.ParseInt(s, 0, 64)
			return v, err == nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// FilterNotes returns the notes whose title or content contains q,
// case-insensitively. An empty q returns notes unchanged.
func FilterNotes(notes []Note, q string) []Note {
	q = strings.ToLower(q)
	if q == "" {
		return notes
	}
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
			out = append(out, n)
		}
	}
	return out
}

func ownerPtr(s string) *string { return &s }

// seedNotes is the data set loaded into an empty store.
func seedNotes() []Note {
	const (
		vanshika = "vanshikarajput@gmail.com"
		john     = "john.doe@example.com"
		alice    = "alice@example.com"
		bob      = "bob@example.com"
	)
	return []Note{
		{ID: 101, Title: "Meeting Notes", Content: "Discussed project timeline and deliverables", Date: "2024-10-20", Owner: ownerPtr(vanshika)},
		{ID: 101, Title: "Ideas", Content: "New feature concepts for the app", Date: "2024-10-21", Owner: ownerPtr(vanshika)},
		{ID: 101, Title: "Shopping List", Content: "Milk, eggs, bread, coffee", Date: "2024-10-22", Owner: ownerPtr(vanshika)},

		{ID: 102, Title: "Workout Plan", Content: "Monday: Chest, Tuesday: Back, Wednesday: Legs", Date: "2024-10-20", Owner: ownerPtr(john)},
		{ID: 102, Title: "Travel Checklist", Content: "Passport, Tickets, Wallet, Sunglasses", Date: "2024-10-21", Owner: ownerPtr(john)},
		{ID: 102, Title: "Books to Read", Content: "Atomic Habits, Clean Code, Deep Work", Date: "2024-10-22", Owner: ownerPtr(john)},

		{ID: 103, Title: "Project Research", Content: "Read papers on AI algorithms and summarize findings", Date: "2024-10-20", Owner: ownerPtr(alice)},
		{ID: 103, Title: "Grocery List", Content: "Tomatoes, Onions, Chicken, Rice", Date: "2024-10-21", Owner: ownerPtr(alice)},
		{ID: 103, Title: "Birthday Plans", Content: "Reserve restaurant, invite friends, buy cake", Date: "2024-10-22", Owner: ownerPtr(alice)},

		{ID: 104, Title: "Work Tasks", Content: "Finish report, attend client call, update spreadsheet", Date: "2024-10-20", Owner: ownerPtr(bob)},
		{ID: 104, Title: "Ideas for Blog", Content: "React tips, TypeScript tricks, Next.js tutorials", Date: "2024-10-21", Owner: ownerPtr(bob)},
		{ID: 104, Title: "Movies to Watch", Content: "Inception, Interstellar, The Matrix", Date: "2024-10-22", Owner: ownerPtr(bob)},
	}
}
