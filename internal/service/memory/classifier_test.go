package memory

import (
	"testing"

	"github.com/sandevgo/selfbot/internal/core"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		fact string
		want core.Category
	}{
		{"preference like", "I like jazz", core.CategoryPreference},
		{"preference love", "I love pizza", core.CategoryPreference},
		{"preference hate", "I hate mondays", core.CategoryPreference},
		{"skill can", "I can juggle", core.CategorySkill},
		{"skill know how", "I know how to sail", core.CategorySkill},
		{"belief", "I believe in second chances", core.CategoryBelief},
		{"belief think that", "I think that winters are too long", core.CategoryBelief},
		{"ideology always", "honesty always wins", core.CategoryIdeology},
		{"ideology never", "I never eat meat", core.CategoryIdeology},
		{"default fact", "the capital of France is Paris", core.CategoryFact},
		{"case insensitive", "I LOVE PIZZA", core.CategoryPreference},
		{"empty input is a fact", "", core.CategoryFact},
		// Rule order decides ties: PREFERENCE is checked before IDEOLOGY.
		{"preference beats ideology", "I always love chocolate", core.CategoryPreference},
		// SKILL precedes BELIEF, so "can" wins over "believe".
		{"skill beats belief", "I believe I can fly", core.CategorySkill},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.fact); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.fact, got, tt.want)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		if got := Classify("I always love chocolate"); got != core.CategoryPreference {
			t.Fatalf("classification changed between calls: %s", got)
		}
	}
}
