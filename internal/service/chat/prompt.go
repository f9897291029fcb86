package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/selfbot/internal/core"
	"github.com/sandevgo/selfbot/pkg/log"
)

const promptEncoding = "cl100k_base"

// fallbackIdentity keeps the bot conversational when the identity profile
// cannot be read.
var fallbackIdentity = core.Identity{
	Name:            core.BotName,
	CoreDescription: "You are a helpful personal assistant.",
}

// PromptBuilder assembles the message list for one generation call: identity
// system prompt, retrieved memories, a bounded slice of session history and
// the current user input.
type PromptBuilder struct {
	identity      core.IdentityRepository
	historyWindow int
	tokenBudget   int
	enc           *tiktoken.Tiktoken
}

func NewPromptBuilder(ctx context.Context, identity core.IdentityRepository, historyWindow, tokenBudget int) *PromptBuilder {
	enc, err := tiktoken.GetEncoding(promptEncoding)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msgf("failed to load %s encoding, falling back to byte estimate", promptEncoding)
		enc = nil
	}
	return &PromptBuilder{
		identity:      identity,
		historyWindow: historyWindow,
		tokenBudget:   tokenBudget,
		enc:           enc,
	}
}

// Build returns the full message list for the backend. History is windowed
// to the most recent turns and then trimmed oldest-first until it fits the
// token budget. The current input is never trimmed.
func (b *PromptBuilder) Build(ctx context.Context, input string, memories []core.MemoryRecord, history []core.ChatMessage) []core.Message {
	identity, err := b.identity.GetIdentity(ctx)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("identity profile unavailable, using fallback")
		identity = fallbackIdentity
	}

	system := b.systemPrompt(identity)
	if len(memories) > 0 {
		system += "\n\n" + memoryBlock(memories)
	}

	messages := []core.Message{{Role: core.RoleSystem, Content: system}}
	messages = append(messages, b.windowHistory(history)...)
	return append(messages, core.Message{Role: core.RoleUser, Content: input})
}

func (b *PromptBuilder) systemPrompt(identity core.Identity) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s. %s\n", identity.Name, identity.CoreDescription)
	if identity.CommunicationStyle != "" {
		fmt.Fprintf(&sb, "Communication style: %s\n", identity.CommunicationStyle)
	}
	sb.WriteString("INSTRUCTION: You are in 'Chat Mode'. Respond in 10-20 words MAX. match the user's length. Be casual.\n")
	sb.WriteString("CRITICAL: If 'Relevant Memories' are provided, YOU MUST USE THEM. They are facts about the user. Do not hallucinate dates.")
	return sb.String()
}

func memoryBlock(memories []core.MemoryRecord) string {
	var sb strings.Builder
	sb.WriteString("Relevant Memories:\n")
	for _, m := range memories {
		fmt.Fprintf(&sb, "- [%s] %s\n", m.Category, m.Content)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// windowHistory takes the last historyWindow messages and drops the oldest
// ones while the combined content exceeds the token budget.
func (b *PromptBuilder) windowHistory(history []core.ChatMessage) []core.Message {
	if len(history) > b.historyWindow {
		history = history[len(history)-b.historyWindow:]
	}

	total := 0
	counts := make([]int, len(history))
	for i, m := range history {
		counts[i] = b.countTokens(m.Content)
		total += counts[i]
	}
	start := 0
	for start < len(history) && total > b.tokenBudget {
		total -= counts[start]
		start++
	}

	out := make([]core.Message, 0, len(history)-start)
	for _, m := range history[start:] {
		out = append(out, core.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

// countTokens uses the BPE encoder when available and a rough 4-bytes-per-
// token estimate when the encoding could not be loaded.
func (b *PromptBuilder) countTokens(s string) int {
	if b.enc == nil {
		return (len(s) + 3) / 4
	}
	return len(b.enc.Encode(s, nil, nil))
}
