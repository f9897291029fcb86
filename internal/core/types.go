package core

import "time"

const (
	BotName    = "SelfBot"
	BotVersion = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single prompt message sent to the generation backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Category classifies a long-term memory record.
type Category string

const (
	CategoryFact            Category = "FACT"
	CategoryPreference      Category = "PREFERENCE"
	CategoryBelief          Category = "BELIEF"
	CategoryIdeology        Category = "IDEOLOGY"
	CategorySkill           Category = "SKILL"
	CategoryPersonalContext Category = "PERSONAL_CONTEXT"
)

// MemoryRecord is one stored fact. Records are immutable after creation
// except for LastAccessedAt.
type MemoryRecord struct {
	ID             int64      `json:"id"`
	OwnerID        *int64     `json:"owner_id,omitempty"` // nil means shared/global
	Category       Category   `json:"category"`
	Content        string     `json:"content"`
	Confidence     float64    `json:"confidence_score"`
	Source         string     `json:"source"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt *time.Time `json:"last_accessed,omitempty"`
}

// Identity is the singleton profile used to build the system prompt.
type Identity struct {
	Name               string
	CoreDescription    string
	CommunicationStyle string
}

type ChatSession struct {
	ID        string    `json:"id"`
	OwnerID   *int64    `json:"owner_id,omitempty"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ChatMessage struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Fragment is one unit of streamed backend output, already normalized to
// plain text at the provider boundary. Err is set on the final fragment of
// a failed stream; its Text still carries a user-visible error line.
type Fragment struct {
	Text string
	Err  error
}
