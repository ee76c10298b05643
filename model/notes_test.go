package model_test

import (
	"context"
	"testing"

	"github.com/billingcat/notes/model"
)

func newTestStore(t *testing.T) *model.Store {
	t.Helper()
	cfg := &model.Config{Latency: "0s"}
	store, err := model.InitDatabase(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitDatabase failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func strp(s string) *string { return &s }

func TestNote_CreateInsertsAtFront(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n := model.Note{ID: 111, Title: "T", Content: "C", Date: "2024-01-01", Owner: strp("a@x.com")}
	saved, err := store.CreateNote(ctx, n)
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	if saved.ID != n.ID || saved.Title != n.Title || *saved.Owner != *n.Owner {
		t.Errorf("CreateNote returned %+v, want %+v", saved, n)
	}

	all, err := store.ListNotes(ctx, nil)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(all.Notes) != 13 {
		t.Fatalf("notes count = %d, want 13", len(all.Notes))
	}
	if all.Notes[0].ID != 111 || all.Notes[0].Title != "T" {
		t.Errorf("first note = %+v, want the created note", all.Notes[0])
	}
	count := 0
	for _, got := range all.Notes {
		if got.ID == 111 {
			count++
		}
	}
	if count != 1 {
		t.Errorf("created note appears %d times, want 1", count)
	}
}

func TestNote_ListByIDScenario(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n := model.Note{ID: 111, Title: "T", Content: "C", Date: "2024-01-01", Owner: strp("a@x.com")}
	if _, err := store.CreateNote(ctx, n); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	listing, err := store.ListNotes(ctx, strp("111"))
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if !listing.Wow {
		t.Error("Wow = false for filter 111, want true")
	}
	if len(listing.Notes) != 1 {
		t.Fatalf("notes count = %d, want 1", len(listing.Notes))
	}
	got := listing.Notes[0]
	if got.ID != 111 || got.Title != "T" || got.Content != "C" || got.Date != "2024-01-01" || got.Owner == nil || *got.Owner != "a@x.com" {
		t.Errorf("note = %+v, want %+v", got, n)
	}
}

func TestNote_ReservedListing(t *testing.T) {
	store := newTestStore(t)

	listing, err := store.ListNotes(context.Background(), strp("101"))
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if listing.Wow {
		t.Error("Wow = true for the reserved id, want false")
	}
	if len(listing.Notes) != 3 {
		t.Fatalf("notes count = %d, want 3", len(listing.Notes))
	}
	wantTitles := []string{"Meeting Notes", "Ideas", "Shopping List"}
	for i, n := range listing.Notes {
		if n.ID != 101 {
			t.Errorf("note %d has id %d, want 101", i, n.ID)
		}
		if n.Title != wantTitles[i] {
			t.Errorf("note %d title = %q, want %q", i, n.Title, wantTitles[i])
		}
		if n.Owner == nil || *n.Owner != "vanshikarajput@gmail.com" {
			t.Errorf("note %d owner = %v", i, n.Owner)
		}
	}
}

func TestNote_WowFlag(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name    string
		filter  *string
		wantWow bool
		want    int
	}{
		{"reserved", strp("101"), false, 3},
		{"other seeded id", strp("102"), true, 3},
		{"no match", strp("999"), true, 0},
		{"not a number", strp("abc"), true, 0},
		{"absent", nil, true, 12},
		{"empty", strp(""), true, 12},
		{"padded reserved", strp(" 101"), true, 3},
		{"exponent", strp("1.01e2"), true, 3},
		{"hex", strp("0x65"), true, 3},
		{"fraction", strp("101.5"), true, 0},
		{"blank", strp("  "), true, 0},
		{"hex with separator", strp("0x_65"), true, 0},
		{"decimal with separator", strp("1_01"), true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listing, err := store.ListNotes(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("ListNotes failed: %v", err)
			}
			if listing.Wow != tt.wantWow {
				t.Errorf("Wow = %v, want %v", listing.Wow, tt.wantWow)
			}
			if len(listing.Notes) != tt.want {
				t.Errorf("notes count = %d, want %d", len(listing.Notes), tt.want)
			}
			if listing.Notes == nil {
				t.Error("Notes must not be nil")
			}
		})
	}
}

func TestNote_UpdateReplacesAllMatches(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n := model.Note{ID: 102, Title: "Replaced", Content: "new", Date: "2024-11-01", Owner: strp("x@y.z")}
	got, err := store.UpdateNote(ctx, n)
	if err != nil {
		t.Fatalf("UpdateNote failed: %v", err)
	}
	if got.Title != "Replaced" {
		t.Errorf("UpdateNote returned %+v", got)
	}

	listing, err := store.ListNotes(ctx, strp("102"))
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(listing.Notes) != 3 {
		t.Fatalf("notes count = %d, want 3", len(listing.Notes))
	}
	for _, n := range listing.Notes {
		if n.Title != "Replaced" || n.Content != "new" || n.Date != "2024-11-01" || *n.Owner != "x@y.z" {
			t.Errorf("note not replaced: %+v", n)
		}
	}

	all, _ := store.ListNotes(ctx, nil)
	if len(all.Notes) != 12 {
		t.Errorf("notes count = %d, want 12", len(all.Notes))
	}
	// position is kept
	if all.Notes[3].Title != "Replaced" {
		t.Errorf("note at index 3 = %q, want replaced note in place", all.Notes[3].Title)
	}
}

func TestNote_UpdateMissingIsNoop(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	before, _ := store.ListNotes(ctx, nil)
	n := model.Note{ID: 4242, Title: "ghost"}
	got, err := store.UpdateNote(ctx, n)
	if err != nil {
		t.Fatalf("UpdateNote failed: %v", err)
	}
	if got.ID != 4242 || got.Title != "ghost" {
		t.Errorf("UpdateNote returned %+v, want input unchanged", got)
	}
	after, _ := store.ListNotes(ctx, nil)
	if len(after.Notes) != len(before.Notes) {
		t.Errorf("notes count changed from %d to %d", len(before.Notes), len(after.Notes))
	}
	missing, _ := store.ListNotes(ctx, strp("4242"))
	if len(missing.Notes) != 0 {
		t.Errorf("update created %d notes", len(missing.Notes))
	}
}

func TestNote_DeleteRemovesAllMatches(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.DeleteNote(ctx, 103)
	if err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	if id != 103 {
		t.Errorf("DeleteNote returned %d, want 103", id)
	}
	listing, _ := store.ListNotes(ctx, strp("103"))
	if len(listing.Notes) != 0 {
		t.Errorf("notes count = %d, want 0", len(listing.Notes))
	}
	all, _ := store.ListNotes(ctx, nil)
	if len(all.Notes) != 9 {
		t.Errorf("notes count = %d, want 9", len(all.Notes))
	}
}

func TestNote_DeleteMissingIsNoop(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.DeleteNote(ctx, 999)
	if err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	if id != 999 {
		t.Errorf("DeleteNote returned %d, want 999", id)
	}
	all, _ := store.ListNotes(ctx, nil)
	if len(all.Notes) != 12 {
		t.Errorf("notes count = %d, want 12", len(all.Notes))
	}
}

func TestNote_MutationSurvivesCanceledRequest(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.CreateNote(ctx, model.Note{ID: 7, Title: "late"}); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	listing, _ := store.ListNotes(context.Background(), strp("7"))
	if len(listing.Notes) != 1 {
		t.Errorf("notes count = %d, want 1", len(listing.Notes))
	}
}

func TestFilterNotes(t *testing.T) {
	notes := []model.Note{
		{ID: 1, Title: "Meeting Notes", Content: "timeline"},
		{ID: 2, Title: "Shopping", Content: "Milk, EGGS"},
		{ID: 3, Title: "Other", Content: ""},
	}
	tests := []struct {
		q    string
		want []int64
	}{
		{"", []int64{1, 2, 3}},
		{"meeting", []int64{1}},
		{"eggs", []int64{2}},
		{"TIME", []int64{1}},
		{"xyz", nil},
	}
	for _, tt := range tests {
		t.Run("q_"+tt.q, func(t *testing.T) {
			got := model.FilterNotes(notes, tt.q)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d notes, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("note %d id = %d, want %d", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestNote_BlankFilterMatchesZero(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateNote(ctx, model.Note{ID: 0, Title: "Zero"}); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	listing, err := store.ListNotes(ctx, strp("  "))
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if !listing.Wow {
		t.Error("Wow = false, want true")
	}
	if len(listing.Notes) != 1 || listing.Notes[0].Title != "Zero" {
		t.Errorf("notes = %+v, want only the note with id 0", listing.Notes)
	}
}
