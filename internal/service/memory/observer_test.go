package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/sandevgo/selfbot/internal/core"
)

func TestObserverGating(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantStored bool
		wantFact   string
	}{
		{
			name:       "informative statement stored",
			input:      "I work as a nurse in Oslo",
			wantStored: true,
			wantFact:   "I work as a nurse in Oslo",
		},
		{
			name:       "short greeting skipped",
			input:      "hi there",
			wantStored: false,
		},
		{
			name:       "question skipped",
			input:      "what is my favorite color?",
			wantStored: false,
		},
		{
			name:       "filler collapses below minimum",
			input:      "ok please well",
			wantStored: false,
		},
		{
			name:       "normalized before storing",
			input:      "my sister was a pilot.",
			wantStored: true,
			wantFact:   "sister is a pilot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			obs := NewObserver(store)

			stored := obs.Observe(context.Background(), tt.input, nil)
			if stored != tt.wantStored {
				t.Fatalf("Observe(%q) = %v, want %v", tt.input, stored, tt.wantStored)
			}
			if !tt.wantStored {
				if len(store.records) != 0 {
					t.Errorf("expected no records, got %+v", store.records)
				}
				return
			}
			if len(store.records) != 1 {
				t.Fatalf("expected 1 record, got %d", len(store.records))
			}
			if store.records[0].Content != tt.wantFact {
				t.Errorf("stored content = %q, want %q", store.records[0].Content, tt.wantFact)
			}
			if store.records[0].Source != sourceObservation {
				t.Errorf("stored source = %q, want %q", store.records[0].Source, sourceObservation)
			}
		})
	}
}

func TestObserverSwallowsStoreFailure(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("store down")}
	obs := NewObserver(store)

	// Must not panic and must report nothing stored.
	if stored := obs.Observe(context.Background(), "I work as a nurse in Oslo", nil); stored {
		t.Error("expected store failure to report not stored")
	}
}

func TestObserverOwnerScope(t *testing.T) {
	store := &fakeStore{}
	obs := NewObserver(store)
	owner := int64(7)

	if !obs.Observe(context.Background(), "I moved to Lisbon last spring", &owner) {
		t.Fatal("expected observation to be stored")
	}
	if store.records[0].OwnerID == nil || *store.records[0].OwnerID != owner {
		t.Errorf("stored owner = %v, want %d", store.records[0].OwnerID, owner)
	}
}

var _ core.MemoryStore = (*fakeStore)(nil)
