package memory

import (
	"context"
	"strings"

	"github.com/sandevgo/selfbot/internal/core"
	"github.com/sandevgo/selfbot/pkg/log"
)

// Gating policy for implicit observations. Tunable heuristics, not a
// correctness guarantee: greetings and questions are skipped.
const (
	minInputWords = 3
	minFactWords  = 2
)

const sourceObservation = "user_interaction"

// Observer implicitly stores facts gleaned from ordinary conversation.
// It is best-effort: failures are logged and swallowed so the visible
// reply is never affected.
type Observer struct {
	store core.MemoryStore
}

func NewObserver(store core.MemoryStore) *Observer {
	return &Observer{store: store}
}

// Observe extracts and persists a fact from input if it passes the gating
// policy. Returns true when a record was stored.
func (o *Observer) Observe(ctx context.Context, input string, ownerID *int64) bool {
	if len(strings.Fields(input)) < minInputWords {
		return false
	}
	if strings.Contains(input, "?") {
		return false
	}

	fact := NormalizeFact(input)
	if fact == "" || len(strings.Fields(fact)) < minFactWords {
		return false
	}

	category := Classify(fact)
	rec := core.MemoryRecord{
		OwnerID:    ownerID,
		Category:   category,
		Content:    fact,
		Confidence: 1.0,
		Source:     sourceObservation,
	}
	if _, err := o.store.Insert(ctx, rec); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to store observation")
		return false
	}

	log.FromCtx(ctx).Debug().Str("category", string(category)).Msg("observation stored")
	return true
}
