package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sandevgo/selfbot/internal/core"
	"github.com/sandevgo/selfbot/internal/service/memory"
	"github.com/sandevgo/selfbot/pkg/log"
)

const sessionTitleLimit = 48

// Detector is a short-circuit stage of the pipeline: when it handles the
// input, its reply is the whole turn and generation is skipped.
type Detector interface {
	Detect(ctx context.Context, raw string, ownerID *int64) (bool, string)
}

// FactObserver passively extracts facts from user input.
type FactObserver interface {
	Observe(ctx context.Context, input string, ownerID *int64) bool
}

// PromptSource builds the backend message list for one turn.
type PromptSource interface {
	Build(ctx context.Context, input string, memories []core.MemoryRecord, history []core.ChatMessage) []core.Message
}

// Request is one user turn. OwnerID arrives as free text from the transport
// and is normalized with ParseOwner.
type Request struct {
	Input     string
	OwnerID   string
	OwnerName string
	SessionID string
}

// Orchestrator runs the turn pipeline: persist the user message, try the
// memory-command and directory-intent detectors, retrieve relevant memories,
// stream a generated reply and persist whatever was produced.
type Orchestrator struct {
	memories  core.MemoryStore
	sessions  core.SessionLog
	directory core.DirectoryService
	ai        core.AIProvider
	commands  Detector
	intents   Detector
	observer  FactObserver
	prompts   PromptSource
	model     string
}

type Deps struct {
	Memories  core.MemoryStore
	Sessions  core.SessionLog
	Directory core.DirectoryService
	AI        core.AIProvider
	Commands  Detector
	Intents   Detector
	Observer  FactObserver
	Prompts   PromptSource
	Model     string
}

func NewOrchestrator(deps Deps) *Orchestrator {
	return &Orchestrator{
		memories:  deps.Memories,
		sessions:  deps.Sessions,
		directory: deps.Directory,
		ai:        deps.AI,
		commands:  deps.Commands,
		intents:   deps.Intents,
		observer:  deps.Observer,
		prompts:   deps.Prompts,
		model:     deps.Model,
	}
}

// HandleTurn processes one user turn and streams the reply. The channel is
// closed when the turn is finished. Every reply path, including failures and
// cancellation, persists the text produced so far exactly once before the
// channel closes.
func (o *Orchestrator) HandleTurn(ctx context.Context, req Request) <-chan core.Fragment {
	out := make(chan core.Fragment, 8)
	go func() {
		defer close(out)
		o.run(ctx, req, out)
	}()
	return out
}

func (o *Orchestrator) run(ctx context.Context, req Request, out chan<- core.Fragment) {
	owner := ParseOwner(req.OwnerID)
	o.persistUserTurn(ctx, req, owner)

	if handled, reply := o.commands.Detect(ctx, req.Input, owner); handled {
		out <- core.Fragment{Text: reply}
		o.finalize(ctx, req, owner, reply)
		return
	}
	if handled, reply := o.intents.Detect(ctx, req.Input, owner); handled {
		out <- core.Fragment{Text: reply}
		o.finalize(ctx, req, owner, reply)
		return
	}

	go o.observer.Observe(context.WithoutCancel(ctx), req.Input, owner)

	memories, err := o.memories.Search(ctx, memory.NormalizeFact(req.Input), owner)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("memory search failed, generating without memories")
		memories = nil
	}

	var history []core.ChatMessage
	if req.SessionID != "" {
		history, err = o.sessions.ListMessages(ctx, req.SessionID)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("failed to load session history")
			history = nil
		}
		// The user message was already persisted above. Keep it out of the
		// history window so it appears exactly once in the prompt.
		if n := len(history); n > 0 && history[n-1].Role == core.RoleUser && history[n-1].Content == req.Input {
			history = history[:n-1]
		}
	}

	messages := o.prompts.Build(ctx, req.Input, memories, history)

	var buffer strings.Builder
	defer func() {
		o.finalize(ctx, req, owner, buffer.String())
	}()

	stream, err := o.ai.ChatStream(ctx, messages, o.model)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to start generation stream")
		out <- core.Fragment{Text: fmt.Sprintf("[Error: %v]", err), Err: err}
		return
	}

	for frag := range stream {
		if frag.Err != nil {
			log.FromCtx(ctx).Error().Err(frag.Err).Msg("generation stream failed")
			out <- frag
			return
		}
		buffer.WriteString(frag.Text)
		select {
		case out <- frag:
		case <-ctx.Done():
			return
		}
	}
}

// persistUserTurn records the incoming user message in the session log and
// the directory communication log before any processing happens.
func (o *Orchestrator) persistUserTurn(ctx context.Context, req Request, owner *int64) {
	if req.SessionID != "" {
		if err := o.sessions.TouchSession(ctx, req.SessionID, owner, sessionTitle(req.Input)); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("failed to touch session")
		}
		if err := o.sessions.AppendMessage(ctx, req.SessionID, core.RoleUser, req.Input); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("failed to log user message")
		}
	}
	if owner != nil {
		if err := o.directory.LogMessage(ctx, *owner, req.OwnerName, core.RoleUser, req.Input); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("failed to write user comm-log entry")
		}
	}
}

// finalize persists the assistant side of the turn, including an empty
// reply when generation produced nothing. It runs on a detached context so
// a cancelled turn still records what was produced.
func (o *Orchestrator) finalize(ctx context.Context, req Request, owner *int64, reply string) {
	ctx = context.WithoutCancel(ctx)
	if req.SessionID != "" {
		if err := o.sessions.AppendMessage(ctx, req.SessionID, core.RoleAssistant, reply); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("failed to log assistant message")
		}
	}
	if owner != nil {
		if err := o.directory.LogMessage(ctx, *owner, req.OwnerName, core.RoleAssistant, reply); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("failed to write assistant comm-log entry")
		}
	}
}

// ParseOwner normalizes the transport-supplied owner id. Empty values and
// the JSON-ish sentinels "null" and "undefined" mean anonymous, as does
// anything that is not an integer.
func ParseOwner(raw string) *int64 {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "null", "undefined":
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func sessionTitle(input string) string {
	title := strings.TrimSpace(input)
	if utf8.RuneCountInString(title) <= sessionTitleLimit {
		return title
	}
	runes := []rune(title)
	return string(runes[:sessionTitleLimit]) + "..."
}
