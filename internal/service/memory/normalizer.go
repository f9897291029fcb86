package memory

import "strings"

// fillerPrefixes are stripped from the start of raw input, most specific
// first. Compound phrases must come before their bare-word tails.
var fillerPrefixes = []string{
	"just remember", "ok remember", "okay remember", "please remember",
	"remember that", "remember:", "remember",
	"just", "ok", "okay", "please", "so", "well",
}

// trailingPunct is trimmed from the end of a normalized fact.
const trailingPunct = ".?!,;:"

// NormalizeFact reduces raw text to a canonical fact string: filler and
// command prefixes removed, "my X was Y" rewritten to present tense,
// sentence-terminating punctuation dropped. The comparison is
// case-insensitive but the remainder keeps its original case.
//
// NormalizeFact is idempotent.
func NormalizeFact(raw string) string {
	cleaned := strings.TrimSpace(raw)

	for {
		lower := strings.ToLower(cleaned)
		stripped := false
		for _, prefix := range fillerPrefixes {
			if strings.HasPrefix(lower, prefix) {
				cleaned = strings.TrimSpace(cleaned[len(prefix):])
				stripped = true
				break
			}
		}
		if !stripped {
			break
		}
	}

	// "my X was Y" -> "X is Y"
	if strings.HasPrefix(strings.ToLower(cleaned), "my ") {
		cleaned = cleaned[3:]
		cleaned = strings.ReplaceAll(cleaned, " was ", " is ")
		cleaned = strings.ReplaceAll(cleaned, " were ", " are ")
	}

	cleaned = strings.TrimRight(cleaned, trailingPunct)

	return strings.TrimSpace(cleaned)
}
