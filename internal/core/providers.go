package core

import (
	"context"
	"time"
)

// AIProvider is the language generation backend.
type AIProvider interface {
	// ChatStream starts a streaming completion. The returned channel is
	// closed when the stream ends; a mid-stream failure is delivered as a
	// final Fragment with Err set. An error return means the request never
	// started.
	ChatStream(ctx context.Context, messages []Message, model string) (<-chan Fragment, error)
	// Models probes the backend and lists available model names.
	Models(ctx context.Context) ([]string, error)
}

// Participant is one roster entry of the external directory service.
type Participant struct {
	UserID     int64  `json:"userId"`
	Username   string `json:"userName"`
	FullName   string `json:"fullName"`
	Department string `json:"department"`
	Points     int64  `json:"points"`
}

// Recognition is one received-recognition history entry.
type Recognition struct {
	Points    int64     `json:"points"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
	Sender    struct {
		FullName string `json:"fullName"`
	} `json:"sender"`
}

// DirectoryService is the external employee-engagement service.
type DirectoryService interface {
	ListUsers(ctx context.Context) ([]Participant, error)
	GetUser(ctx context.Context, id int64) (*Participant, error)
	Recognize(ctx context.Context, senderID int64, receiverUsername, comment string, points int64) (string, error)
	GetRecognitionHistory(ctx context.Context, userID int64) ([]Recognition, error)
	// LogMessage appends one side of an exchange to the communication
	// audit log. Best-effort from the orchestrator's perspective.
	LogMessage(ctx context.Context, userID int64, userName, role, content string) error
}
