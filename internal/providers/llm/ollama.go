package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sandevgo/selfbot/internal/core"
	"github.com/sandevgo/selfbot/pkg/log"
)

const scannerBufferSize = 1024 * 1024

type Ollama struct {
	baseProvider
}

var _ core.AIProvider = (*Ollama)(nil)

func NewOllama(baseURL string) *Ollama {
	return &Ollama{baseProvider: newBaseProvider(baseURL)}
}

// ChatStream starts a streaming completion against /api/chat. Chunks arrive
// as NDJSON; each line is normalized to plain text. A mid-stream failure is
// delivered as a final fragment carrying both a readable error line and the
// error itself.
func (o *Ollama) ChatStream(ctx context.Context, messages []core.Message, model string) (<-chan core.Fragment, error) {
	payload := map[string]any{
		"model":    model,
		"messages": messages,
		"stream":   true,
	}

	resp, err := o.doRequest(ctx, http.MethodPost, "/api/chat", payload)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(data))
	}

	out := make(chan core.Fragment, 8)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), scannerBufferSize)

		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			text, chunkErr, done := parseChunk(line)
			if chunkErr != "" {
				err := fmt.Errorf("ollama stream error: %s", chunkErr)
				o.emit(ctx, out, core.Fragment{Text: fmt.Sprintf("[Error: %v]", err), Err: err})
				return
			}
			if text != "" && !o.emit(ctx, out, core.Fragment{Text: text}) {
				return
			}
			if done {
				return
			}
		}

		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			log.FromCtx(ctx).Error().Err(err).Msg("ollama stream read failed")
			o.emit(ctx, out, core.Fragment{Text: fmt.Sprintf("[Error: %v]", err), Err: err})
		}
	}()
	return out, nil
}

// parseChunk normalizes the chunk shapes Ollama emits: chat chunks carry
// message.content, generate chunks carry response, failures carry error.
// Anything unparseable is passed through as raw text.
func parseChunk(line []byte) (text, errMsg string, done bool) {
	var chunk struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Response string `json:"response"`
		Error    string `json:"error"`
		Done     bool   `json:"done"`
	}
	if err := json.Unmarshal(line, &chunk); err != nil {
		return string(line), "", false
	}
	if chunk.Error != "" {
		return "", chunk.Error, false
	}
	if chunk.Message.Content != "" {
		return chunk.Message.Content, "", chunk.Done
	}
	return chunk.Response, "", chunk.Done
}

func (o *Ollama) emit(ctx context.Context, out chan<- core.Fragment, frag core.Fragment) bool {
	select {
	case out <- frag:
		return true
	case <-ctx.Done():
		return false
	}
}

// Models probes /api/tags and lists the locally available model names.
func (o *Ollama) Models(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama not available: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(result.Models))
	for _, m := range result.Models {
		names = append(names, m.Name)
	}
	return names, nil
}
