package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/ports"
)

// JournalContractTest is a reusable test suite that verifies if an adapter complies with ports.Journal.
// The journal must be empty when passed in.
func JournalContractTest(t *testing.T, journal ports.Journal) {
	t.Helper()
	ctx := context.Background()

	// 1. Empty journal
	t.Run("Entries_Empty", func(t *testing.T) {
		entries, err := journal.Entries(ctx)
		if err != nil {
			t.Fatalf("unexpected error reading entries: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected empty journal, got %d entries", len(entries))
		}
	})

	// 2. Append keeps order
	t.Run("Append_Order", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Millisecond)
		changes := []domain.Change{
			{Property: "x", Value: "one", Timestamp: now},
			{Property: "y", Value: "two", OldValue: "zero", Timestamp: now.Add(time.Second)},
			{Property: "x", Value: "three", OldValue: "one", Timestamp: now.Add(2 * time.Second)},
		}
		for _, c := range changes {
			if err := journal.Append(ctx, c); err != nil {
				t.Fatalf("unexpected error appending %v: %v", c, err)
			}
		}

		entries, err := journal.Entries(ctx)
		if err != nil {
			t.Fatalf("unexpected error reading entries: %v", err)
		}
		if len(entries) != len(changes) {
			t.Fatalf("expected %d entries, got %d", len(changes), len(entries))
		}
		for i, want := range changes {
			got := entries[i]
			if got.Property != want.Property || got.Value != want.Value || got.OldValue != want.OldValue {
				t.Errorf("entry %d mismatch. got %+v, want %+v", i, got, want)
			}
			if !got.Timestamp.Equal(want.Timestamp) {
				t.Errorf("entry %d timestamp. got %v, want %v", i, got.Timestamp, want.Timestamp)
			}
		}
	})

	// 3. Entries are copies
	t.Run("Entries_Isolated", func(t *testing.T) {
		entries, err := journal.Entries(ctx)
		if err != nil {
			t.Fatalf("unexpected error reading entries: %v", err)
		}
		if len(entries) == 0 {
			t.Skip("nothing recorded")
		}
		entries[0].Property = "mutated"

		again, _ := journal.Entries(ctx)
		if again[0].Property == "mutated" {
			t.Error("mutating returned entries changed the journal")
		}
	})

	// 4. Reset
	t.Run("Reset", func(t *testing.T) {
		if err := journal.Reset(ctx); err != nil {
			t.Fatalf("unexpected error resetting: %v", err)
		}
		entries, err := journal.Entries(ctx)
		if err != nil {
			t.Fatalf("unexpected error reading entries: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected empty journal after reset, got %d entries", len(entries))
		}
	})
}
