package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rentalneeds/leadflow-backend/pkg/logger"
)

const defaultBaseURL = "https://api.openai.com/v1"

// ClientConfig configures the chat completions endpoint.
type ClientConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Client asks an OpenAI-compatible vision model to score a bank statement.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a chat completions client
func NewClient(cfg ClientConfig, log *logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.WithComponent("openai"),
	}
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze sends the rubric and the statement image in a single request.
// It does not retry.
func (c *Client) Analyze(ctx context.Context, imageRef string) (*Analysis, error) {
	start := time.Now()

	body := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: Rubric},
				{Type: "image_url", ImageURL: &imageURL{URL: imageRef}},
			},
		}},
		MaxTokens: c.cfg.MaxTokens,
	}

	raw, err := c.post(ctx, strings.TrimRight(c.cfg.BaseURL, "/")+"/chat/completions", body)
	if err != nil {
		c.log.Error().Err(err).Int64("elapsed_ms", time.Since(start).Milliseconds()).Msg("trust score request failed")
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrAnalysisFailed, err)
	}
	if len(cc.Choices) == 0 || strings.TrimSpace(cc.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("%w: no response from model", ErrAnalysisFailed)
	}

	analysis, err := ParseReply(cc.Choices[0].Message.Content)
	if err != nil {
		c.log.Error().Err(err).Int("content_len", len(cc.Choices[0].Message.Content)).Msg("unparseable trust score reply")
		return nil, err
	}

	c.log.Info().
		Int("trust_score", analysis.TrustScore).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("bank statement analyzed")
	return analysis, nil
}

func (c *Client) post(ctx context.Context, url string, body any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, truncate(string(data), 512))
	}
	return data, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
