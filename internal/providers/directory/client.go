package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sandevgo/selfbot/internal/core"
	"github.com/sandevgo/selfbot/pkg/retry"
)

// Client talks to the employee-engagement directory service. Idempotent
// reads retry with backoff; writes are attempted once.
type Client struct {
	client  *http.Client
	baseURL string
	retrier *retry.Retrier
}

var _ core.DirectoryService = (*Client)(nil)

func NewClient(baseURL string) *Client {
	return &Client{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		retrier: retry.NewDefaultRetrier(),
	}
}

func (c *Client) ListUsers(ctx context.Context) ([]core.Participant, error) {
	var users []core.Participant
	err := c.retrier.Do(ctx, func() error {
		return c.getJSON(ctx, "/participants", &users)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch participants: %w", err)
	}
	return users, nil
}

// GetUser returns nil without an error when the user does not exist.
func (c *Client) GetUser(ctx context.Context, id int64) (*core.Participant, error) {
	var user core.Participant
	found := true
	err := c.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+fmt.Sprintf("/participants/%d", id), nil)
		if err != nil {
			return err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			found = false
			return nil
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("directory returned status %d", resp.StatusCode)
		}
		found = true
		return json.NewDecoder(resp.Body).Decode(&user)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %d: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return &user, nil
}

// Recognize transfers points from the sender to the named receiver and
// returns the service's confirmation line verbatim.
func (c *Client) Recognize(ctx context.Context, senderID int64, receiverUsername, comment string, points int64) (string, error) {
	payload := map[string]any{
		"senderId":         senderID,
		"receiverUsername": receiverUsername,
		"comment":          comment,
		"points":           points,
	}

	resp, err := c.postJSON(ctx, "/recognize", payload)
	if err != nil {
		return "", fmt.Errorf("recognition request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("directory returned status %d: %s", resp.StatusCode, string(body))
	}
	return string(body), nil
}

func (c *Client) GetRecognitionHistory(ctx context.Context, userID int64) ([]core.Recognition, error) {
	var history []core.Recognition
	err := c.retrier.Do(ctx, func() error {
		return c.getJSON(ctx, fmt.Sprintf("/recognize/received/%d", userID), &history)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recognition history: %w", err)
	}
	return history, nil
}

// LogMessage appends one exchange side to the communication audit log.
func (c *Client) LogMessage(ctx context.Context, userID int64, userName, role, content string) error {
	payload := map[string]any{
		"userId":   userID,
		"userName": userName,
		"role":     role,
		"content":  content,
	}

	resp, err := c.postJSON(ctx, "/comm-log", payload)
	if err != nil {
		return fmt.Errorf("comm-log request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("directory returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("directory returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}
