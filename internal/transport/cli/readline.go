package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/sandevgo/selfbot/internal/config"
	"github.com/sandevgo/selfbot/internal/core"
	"github.com/sandevgo/selfbot/internal/service/chat"
	"github.com/sandevgo/selfbot/pkg/log"
)

type ReadLine struct {
	cfg       *config.AppConfig
	orch      *chat.Orchestrator
	memories  core.MemoryStore
	sessions  core.SessionLog
	ai        core.AIProvider
	ownerID   string
	ownerName string
	sessionID string
	rl        *readline.Instance
}

type Deps struct {
	Cfg       *config.AppConfig
	Orch      *chat.Orchestrator
	Memories  core.MemoryStore
	Sessions  core.SessionLog
	AI        core.AIProvider
	OwnerID   string
	OwnerName string
}

func NewReadLine(deps Deps) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(deps.Cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(deps.Cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:       deps.Cfg,
		orch:      deps.Orch,
		memories:  deps.Memories,
		sessions:  deps.Sessions,
		ai:        deps.AI,
		ownerID:   deps.OwnerID,
		ownerName: deps.OwnerName,
		sessionID: "cli-" + uuid.NewString(),
		rl:        rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Str("session", r.sessionID).Msg("CLI chat started. Type 'exit' to quit, '/help' for commands.")

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			r.handleCommand(ctx, line)
			continue
		}

		stream := r.orch.HandleTurn(ctx, chat.Request{
			Input:     line,
			OwnerID:   r.ownerID,
			OwnerName: r.ownerName,
			SessionID: r.sessionID,
		})
		for frag := range stream {
			fmt.Fprint(r.rl.Stdout(), frag.Text)
		}
		fmt.Fprintln(r.rl.Stdout())
	}
}

func (r *ReadLine) handleCommand(ctx context.Context, line string) {
	out := r.rl.Stdout()
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/help":
		fmt.Fprintln(out, "/new              start a fresh session")
		fmt.Fprintln(out, "/sessions         list stored sessions")
		fmt.Fprintln(out, "/rename <title>   rename the current session")
		fmt.Fprintln(out, "/clear            delete the current session and start over")
		fmt.Fprintln(out, "/memories         show recently stored memories")
		fmt.Fprintln(out, "/forget <id>      delete a stored memory")
		fmt.Fprintln(out, "/models           list models available on the backend")

	case "/new":
		r.sessionID = "cli-" + uuid.NewString()
		fmt.Fprintf(out, "Started session %s\n", r.sessionID)

	case "/sessions":
		sessions, err := r.sessions.ListSessions(ctx, chat.ParseOwner(r.ownerID))
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions yet.")
			return
		}
		for _, s := range sessions {
			fmt.Fprintf(out, "%s | %s | updated %s\n", s.ID, s.Title, s.UpdatedAt.Format("2006-01-02 15:04"))
		}

	case "/rename":
		if arg == "" {
			fmt.Fprintln(out, "Usage: /rename <title>")
			return
		}
		if err := r.sessions.RenameSession(ctx, r.sessionID, arg); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintln(out, "Renamed.")

	case "/clear":
		if err := r.sessions.DeleteSession(ctx, r.sessionID); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		r.sessionID = "cli-" + uuid.NewString()
		fmt.Fprintf(out, "Session deleted. Now on %s\n", r.sessionID)

	case "/memories":
		records, err := r.memories.ListRecent(ctx, chat.ParseOwner(r.ownerID), 20)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if len(records) == 0 {
			fmt.Fprintln(out, "Nothing stored yet.")
			return
		}
		for _, rec := range records {
			fmt.Fprintf(out, "#%d [%s] %s\n", rec.ID, rec.Category, rec.Content)
		}

	case "/forget":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			fmt.Fprintln(out, "Usage: /forget <id>")
			return
		}
		if err := r.memories.Delete(ctx, id); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintln(out, "Forgotten.")

	case "/models":
		models, err := r.ai.Models(ctx)
		if err != nil {
			fmt.Fprintf(out, "Backend unreachable: %v\n", err)
			return
		}
		for _, m := range models {
			fmt.Fprintln(out, m)
		}

	default:
		fmt.Fprintf(out, "Unknown command %s, try /help\n", cmd)
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
