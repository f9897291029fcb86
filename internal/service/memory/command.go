package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/selfbot/internal/core"
	"github.com/sandevgo/selfbot/pkg/log"
)

// commandTriggers are explicit storage instructions, checked in order.
// Longer phrases come before the generic bare-word trigger so that
// "please remember ..." is not swallowed by "remember".
var commandTriggers = []string{
	"remember that",
	"remember:",
	"learn that",
	"store this:",
	"can you remember",
	"please remember",
	"could you remember",
	"i want you to remember",
	"make a note that",
}

const bareTrigger = "remember"

// leadingConnectors are dropped from the start of the command payload,
// e.g. "can you remember that I ..." -> "I ...".
var leadingConnectors = []string{"that", "to", "about"}

const emptyCommandReply = "I need something to remember."

const sourceCommand = "user_command"

// CommandDetector recognizes explicit remember/learn/store instructions
// and persists their payload. It must run before any other interpretation
// of a turn.
type CommandDetector struct {
	store core.MemoryStore
}

func NewCommandDetector(store core.MemoryStore) *CommandDetector {
	return &CommandDetector{store: store}
}

// Detect reports whether raw is a memory command and, if so, the reply to
// show the user. A (false, "") return means the turn is not a command.
func (d *CommandDetector) Detect(ctx context.Context, raw string, ownerID *int64) (bool, string) {
	lower := strings.ToLower(raw)

	// Tolerate stray punctuation before the trigger ("...remember that X").
	start := 0
	for start < len(lower) && !isAlnum(lower[start]) {
		start++
	}
	stripped := lower[start:]

	trigger := ""
	for _, t := range commandTriggers {
		if strings.HasPrefix(stripped, t) {
			trigger = t
			break
		}
	}
	if trigger == "" && strings.HasPrefix(stripped, bareTrigger) &&
		!strings.HasPrefix(stripped, "remembering") {
		trigger = bareTrigger
	}
	if trigger == "" {
		return false, ""
	}

	content := trimPayload(raw[start+len(trigger):])
	if content == "" {
		return true, emptyCommandReply
	}

	fact := NormalizeFact(content)
	if fact == "" {
		return true, emptyCommandReply
	}

	category := Classify(fact)
	rec := core.MemoryRecord{
		OwnerID:    ownerID,
		Category:   category,
		Content:    fact,
		Confidence: 1.0,
		Source:     sourceCommand,
	}
	if _, err := d.store.Insert(ctx, rec); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to store commanded memory")
		return true, fmt.Sprintf("I tried to remember that, but storing it failed: %v", err)
	}

	log.FromCtx(ctx).Info().Str("category", string(category)).Msg("memory stored by command")
	return true, fmt.Sprintf("I have stored that in my memory as a %s.", category)
}

// trimPayload strips leading punctuation, whitespace and connector words
// from the text following a trigger phrase.
func trimPayload(s string) string {
	s = strings.TrimLeft(s, " \t:,.!?-")
	for {
		lower := strings.ToLower(s)
		trimmed := false
		for _, conn := range leadingConnectors {
			if strings.HasPrefix(lower, conn+" ") {
				s = strings.TrimSpace(s[len(conn)+1:])
				trimmed = true
				break
			}
		}
		if !trimmed {
			break
		}
	}
	return strings.TrimSpace(s)
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
