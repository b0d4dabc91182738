package chat

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.0-flash"

	defaultSystemPrompt = "You are a helpful content strategy assistant for creators. " +
		"Help users brainstorm content ideas, plan videos and posts, and grow their audience. " +
		"Keep answers practical and concise."
)

// GeminiConfig configures the Gemini streaming client.
type GeminiConfig struct {
	APIKey       string
	Model        string // defaults to gemini-2.0-flash
	BaseURL      string // override for tests
	SystemPrompt string
	HTTPClient   *http.Client
}

// GeminiStreamer streams replies from the Gemini generateContent API
// using its server-sent events transport.
type GeminiStreamer struct {
	apiKey       string
	model        string
	baseURL      string
	systemPrompt string
	client       *http.Client
}

// NewGemini creates a streaming client. The API key is required.
func NewGemini(config GeminiConfig) (*GeminiStreamer, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("chat: api key is required")
	}
	s := &GeminiStreamer{
		apiKey:       config.APIKey,
		model:        config.Model,
		baseURL:      config.BaseURL,
		systemPrompt: config.SystemPrompt,
		client:       config.HTTPClient,
	}
	if s.model == "" {
		s.model = defaultModel
	}
	if s.baseURL == "" {
		s.baseURL = defaultBaseURL
	}
	if s.systemPrompt == "" {
		s.systemPrompt = defaultSystemPrompt
	}
	if s.client == nil {
		s.client = &http.Client{Timeout: 120 * time.Second}
	}
	return s, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiChunk struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Stream sends the conversation to Gemini and invokes fn once per text
// delta from the SSE response. A non-nil error from fn aborts the stream.
func (s *GeminiStreamer) Stream(ctx context.Context, req StreamRequest, fn func(delta string) error) error {
	body := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: s.systemPrompt}}},
	}
	for _, turn := range req.History {
		role := "user"
		if turn.Role == RoleAssistant {
			role = "model"
		}
		body.Contents = append(body.Contents, geminiContent{Role: role, Parts: []geminiPart{{Text: turn.Content}}})
	}
	body.Contents = append(body.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: req.Message}}})

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("chat: encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse&key=%s",
		s.baseURL, url.PathEscape(s.model), url.QueryEscape(s.apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("chat: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("chat: upstream request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("chat: upstream status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}
		var chunk geminiChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		for _, cand := range chunk.Candidates {
			for _, part := range cand.Content.Parts {
				if part.Text == "" {
					continue
				}
				if err := fn(part.Text); err != nil {
					return err
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("chat: read stream: %w", err)
	}
	return nil
}
