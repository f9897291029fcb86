package intent

import (
	"strconv"
	"strings"

	"github.com/sandevgo/selfbot/internal/core"
)

// fuzzyPrefixLen is the weak typo-tolerance heuristic: the first N
// characters of the first candidate word are compared against the first N
// characters of each roster entry's first name. Deliberately not
// strengthened beyond the original behavior.
const fuzzyPrefixLen = 3

// minFirstNameLen guards the exact first-name pass against short names
// ("Al") matching unrelated words.
const minFirstNameLen = 4

// skipWords are ignored when looking for the first candidate name word.
var skipWords = map[string]bool{
	"points": true,
	"point":  true,
	"to":     true,
	"for":    true,
	"with":   true,
	"the":    true,
	"a":      true,
}

// resolveTarget finds the roster entry named in text. Exact passes run
// first (full name, username, long-enough first name as case-insensitive
// substrings), then the fuzzy prefix heuristic. The second return value is
// the text remaining after the matched name, used as the comment source.
func resolveTarget(text string, roster []core.Participant) (*core.Participant, string, bool) {
	lowerText := strings.ToLower(text)

	for pass := 0; pass < 3; pass++ {
		for i := range roster {
			var key string
			switch pass {
			case 0:
				key = roster[i].FullName
			case 1:
				key = roster[i].Username
			case 2:
				key = firstName(roster[i].FullName)
				if len(key) < minFirstNameLen {
					continue
				}
			}
			if key == "" {
				continue
			}
			if idx := strings.Index(lowerText, strings.ToLower(key)); idx >= 0 {
				return &roster[i], text[idx+len(key):], true
			}
		}
	}

	word, tail := firstCandidateWord(text)
	if len(word) >= fuzzyPrefixLen {
		prefix := word[:fuzzyPrefixLen]
		for i := range roster {
			fn := strings.ToLower(firstName(roster[i].FullName))
			if len(fn) >= fuzzyPrefixLen && fn[:fuzzyPrefixLen] == prefix {
				return &roster[i], tail, true
			}
		}
	}

	return nil, "", false
}

func firstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// firstCandidateWord returns the first lowercased word of text that is not
// a number or a filler word, plus the text following it.
func firstCandidateWord(text string) (string, string) {
	rest := text
	for {
		rest = strings.TrimLeft(rest, " \t,.:;!?\"'")
		if rest == "" {
			return "", ""
		}
		cut := strings.IndexAny(rest, " \t")
		var word, tail string
		if cut < 0 {
			word, tail = rest, ""
		} else {
			word, tail = rest[:cut], rest[cut:]
		}
		word = strings.ToLower(strings.Trim(word, ",.:;!?\"'"))
		if word == "" || isNumeric(word) || skipWords[word] {
			rest = tail
			continue
		}
		return word, tail
	}
}

// leadingNumber extracts an integer appearing before the target's name,
// e.g. "give 50 points to John". Numbers later in the text (inside the
// comment) are left alone.
func leadingNumber(text string) (int64, bool) {
	rest := text
	for {
		rest = strings.TrimLeft(rest, " \t,.:;!?\"'")
		if rest == "" {
			return 0, false
		}
		cut := strings.IndexAny(rest, " \t")
		var word, tail string
		if cut < 0 {
			word, tail = rest, ""
		} else {
			word, tail = rest[:cut], rest[cut:]
		}
		word = strings.ToLower(strings.Trim(word, ",.:;!?\"'"))
		if isNumeric(word) {
			n, err := strconv.ParseInt(word, 10, 64)
			return n, err == nil
		}
		if skipWords[word] || word == "" {
			rest = tail
			continue
		}
		return 0, false
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
