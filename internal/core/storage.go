package core

import "context"

// MemoryStore is the keyed record store for long-term memories.
type MemoryStore interface {
	Insert(ctx context.Context, rec MemoryRecord) (int64, error)
	// Search returns the top 5 records ranked by relevance, then recency.
	Search(ctx context.Context, query string, ownerID *int64) ([]MemoryRecord, error)
	ListRecent(ctx context.Context, ownerID *int64, limit int) ([]MemoryRecord, error)
	Delete(ctx context.Context, id int64) error
}

// SessionLog persists the two sides of every chat turn.
type SessionLog interface {
	// TouchSession creates the session on first use and bumps updated_at
	// on every subsequent call.
	TouchSession(ctx context.Context, sessionID string, ownerID *int64, title string) error
	AppendMessage(ctx context.Context, sessionID, role, content string) error
	ListMessages(ctx context.Context, sessionID string) ([]ChatMessage, error)
	ListSessions(ctx context.Context, ownerID *int64) ([]ChatSession, error)
	RenameSession(ctx context.Context, sessionID, title string) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// IdentityRepository reads the singleton identity profile.
type IdentityRepository interface {
	GetIdentity(ctx context.Context) (Identity, error)
}
