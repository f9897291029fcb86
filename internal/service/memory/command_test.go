package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/sandevgo/selfbot/internal/core"
)

type fakeStore struct {
	records   []core.MemoryRecord
	insertErr error
}

func (f *fakeStore) Insert(ctx context.Context, rec core.MemoryRecord) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	rec.ID = int64(len(f.records) + 1)
	f.records = append(f.records, rec)
	return rec.ID, nil
}

func (f *fakeStore) Search(ctx context.Context, query string, ownerID *int64) ([]core.MemoryRecord, error) {
	return nil, nil
}

func (f *fakeStore) ListRecent(ctx context.Context, ownerID *int64, limit int) ([]core.MemoryRecord, error) {
	return f.records, nil
}

func (f *fakeStore) Delete(ctx context.Context, id int64) error {
	return nil
}

func TestCommandDetector(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantCommand bool
		wantReply   string
		wantContent string
		wantCat     core.Category
	}{
		{
			name:        "remember that",
			input:       "remember that I love pizza",
			wantCommand: true,
			wantReply:   "I have stored that in my memory as a PREFERENCE.",
			wantContent: "I love pizza",
			wantCat:     core.CategoryPreference,
		},
		{
			name:        "remember colon",
			input:       "remember: the wifi password is hunter2",
			wantCommand: true,
			wantReply:   "I have stored that in my memory as a FACT.",
			wantContent: "the wifi password is hunter2",
			wantCat:     core.CategoryFact,
		},
		{
			name:        "learn that",
			input:       "learn that I can play chess",
			wantCommand: true,
			wantReply:   "I have stored that in my memory as a SKILL.",
			wantContent: "I can play chess",
			wantCat:     core.CategorySkill,
		},
		{
			name:        "polite phrasing with connector",
			input:       "can you remember that I never drink coffee",
			wantCommand: true,
			wantReply:   "I have stored that in my memory as a IDEOLOGY.",
			wantContent: "I never drink coffee",
			wantCat:     core.CategoryIdeology,
		},
		{
			name:        "make a note that",
			input:       "make a note that the deadline is Friday",
			wantCommand: true,
			wantReply:   "I have stored that in my memory as a FACT.",
			wantContent: "the deadline is Friday",
			wantCat:     core.CategoryFact,
		},
		{
			name:        "leading punctuation tolerated",
			input:       "...remember that I hate spoilers",
			wantCommand: true,
			wantReply:   "I have stored that in my memory as a PREFERENCE.",
			wantContent: "I hate spoilers",
			wantCat:     core.CategoryPreference,
		},
		{
			name:        "bare remember",
			input:       "remember the oven is broken",
			wantCommand: true,
			wantReply:   "I have stored that in my memory as a FACT.",
			wantContent: "the oven is broken",
			wantCat:     core.CategoryFact,
		},
		{
			name:        "empty payload",
			input:       "remember that",
			wantCommand: true,
			wantReply:   "I need something to remember.",
		},
		{
			name:        "payload of pure filler",
			input:       "remember that ok please",
			wantCommand: true,
			wantReply:   "I need something to remember.",
		},
		{
			name:        "remembering is not a command",
			input:       "remembering my childhood makes me happy",
			wantCommand: false,
		},
		{
			name:        "ordinary conversation",
			input:       "what's the weather like today",
			wantCommand: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			detector := NewCommandDetector(store)

			handled, reply := detector.Detect(context.Background(), tt.input, nil)
			if handled != tt.wantCommand {
				t.Fatalf("Detect(%q) handled = %v, want %v", tt.input, handled, tt.wantCommand)
			}
			if !tt.wantCommand {
				return
			}
			if reply != tt.wantReply {
				t.Errorf("reply = %q, want %q", reply, tt.wantReply)
			}
			if tt.wantContent == "" {
				if len(store.records) != 0 {
					t.Errorf("expected nothing stored, got %+v", store.records)
				}
				return
			}
			if len(store.records) != 1 {
				t.Fatalf("expected 1 record, got %d", len(store.records))
			}
			if store.records[0].Content != tt.wantContent {
				t.Errorf("stored content = %q, want %q", store.records[0].Content, tt.wantContent)
			}
			if store.records[0].Category != tt.wantCat {
				t.Errorf("stored category = %s, want %s", store.records[0].Category, tt.wantCat)
			}
		})
	}
}

func TestCommandDetectorOwnerScope(t *testing.T) {
	store := &fakeStore{}
	detector := NewCommandDetector(store)
	owner := int64(42)

	handled, _ := detector.Detect(context.Background(), "remember that I love pizza", &owner)
	if !handled {
		t.Fatal("expected command to be handled")
	}
	if store.records[0].OwnerID == nil || *store.records[0].OwnerID != owner {
		t.Errorf("stored owner = %v, want %d", store.records[0].OwnerID, owner)
	}
}

func TestCommandDetectorStoreFailure(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("disk full")}
	detector := NewCommandDetector(store)

	handled, reply := detector.Detect(context.Background(), "remember that I love pizza", nil)
	if !handled {
		t.Fatal("expected command to be handled despite store failure")
	}
	if reply == "" || reply == "I have stored that in my memory as a PREFERENCE." {
		t.Errorf("expected failure to surface in reply, got %q", reply)
	}
}
