package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/sandevgo/selfbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdentity struct {
	identity core.Identity
	err      error
}

func (f *fakeIdentity) GetIdentity(ctx context.Context) (core.Identity, error) {
	return f.identity, f.err
}

func testPromptBuilder(identity core.IdentityRepository, window, budget int) *PromptBuilder {
	// enc stays nil so tests do not depend on the BPE vocabulary being
	// available; the byte estimate is deterministic.
	return &PromptBuilder{identity: identity, historyWindow: window, tokenBudget: budget}
}

func TestBuildSystemPrompt(t *testing.T) {
	b := testPromptBuilder(&fakeIdentity{identity: core.Identity{
		Name:               "Krishna",
		CoreDescription:    "A software engineer who loves chai.",
		CommunicationStyle: "Warm and direct.",
	}}, 10, 1024)

	memories := []core.MemoryRecord{
		{Category: core.CategoryFact, Content: "user lives in Oslo"},
		{Category: core.CategoryPreference, Content: "I love pizza"},
	}

	messages := b.Build(context.Background(), "where do I live?", memories, nil)
	require.Len(t, messages, 2)

	system := messages[0]
	assert.Equal(t, core.RoleSystem, system.Role)
	assert.Contains(t, system.Content, "You are Krishna. A software engineer who loves chai.")
	assert.Contains(t, system.Content, "Communication style: Warm and direct.")
	assert.Contains(t, system.Content, "Relevant Memories:")
	assert.Contains(t, system.Content, "- [FACT] user lives in Oslo")
	assert.Contains(t, system.Content, "- [PREFERENCE] I love pizza")
	assert.Contains(t, system.Content, "Do not hallucinate dates.")

	assert.Equal(t, core.Message{Role: core.RoleUser, Content: "where do I live?"}, messages[1])
}

func TestBuildWithoutMemoriesOmitsBlock(t *testing.T) {
	b := testPromptBuilder(&fakeIdentity{identity: core.Identity{Name: "Krishna"}}, 10, 1024)

	messages := b.Build(context.Background(), "hi", nil, nil)
	require.Len(t, messages, 2)
	assert.NotContains(t, messages[0].Content, "Relevant Memories:")
}

func TestBuildFallsBackOnIdentityError(t *testing.T) {
	b := testPromptBuilder(&fakeIdentity{err: errors.New("db gone")}, 10, 1024)

	messages := b.Build(context.Background(), "hi", nil, nil)
	require.NotEmpty(t, messages)
	assert.Contains(t, messages[0].Content, "You are "+core.BotName+".")
}

func TestWindowHistoryCapsTurnCount(t *testing.T) {
	b := testPromptBuilder(&fakeIdentity{}, 4, 1024)

	var history []core.ChatMessage
	for i := 0; i < 10; i++ {
		role := core.RoleUser
		if i%2 == 1 {
			role = core.RoleAssistant
		}
		history = append(history, core.ChatMessage{Role: role, Content: string(rune('a' + i))})
	}

	out := b.windowHistory(history)
	require.Len(t, out, 4)
	assert.Equal(t, "g", out[0].Content)
	assert.Equal(t, "j", out[3].Content)
}

func TestWindowHistoryTrimsOldestToBudget(t *testing.T) {
	// Each message is 4 bytes, one estimated token. Budget of 3 keeps the
	// newest three.
	b := testPromptBuilder(&fakeIdentity{}, 10, 3)

	history := []core.ChatMessage{
		{Role: core.RoleUser, Content: "aaaa"},
		{Role: core.RoleAssistant, Content: "bbbb"},
		{Role: core.RoleUser, Content: "cccc"},
		{Role: core.RoleAssistant, Content: "dddd"},
		{Role: core.RoleUser, Content: "eeee"},
	}

	out := b.windowHistory(history)
	require.Len(t, out, 3)
	assert.Equal(t, "cccc", out[0].Content)
	assert.Equal(t, "eeee", out[2].Content)
}
