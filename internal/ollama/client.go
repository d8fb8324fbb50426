package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const (
	// DefaultModel is the recommended summary model
	DefaultModel = "llama3.2"
	// DefaultURL is the default Ollama API endpoint
	DefaultURL = "http://localhost:11434"

	// maxPromptChars keeps long documents inside the model context window
	maxPromptChars = 30000
)

const summaryPrompt = `Summarize the following document in at most three sentences.
Reply with the summary only, without preamble or formatting.

%s`

// Client wraps the Ollama API client
type Client struct {
	client *api.Client
	model  string
}

// NewClient creates a new Ollama client for the given endpoint
func NewClient(rawURL, model string) (*Client, error) {
	if rawURL == "" {
		rawURL = DefaultURL
	}
	if model == "" {
		model = DefaultModel
	}

	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url %q: %w", rawURL, err)
	}

	return &Client{
		client: api.NewClient(base, &http.Client{Timeout: 2 * time.Minute}),
		model:  model,
	}, nil
}

// IsAvailable checks if Ollama is running and accessible
func IsAvailable(url string) bool {
	if url == "" {
		url = DefaultURL
	}

	// Try to connect with a short timeout
	client := &http.Client{
		Timeout: 2 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// Summarize asks the model for a short summary of text
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("text cannot be empty")
	}
	if len(text) > maxPromptChars {
		text = text[:maxPromptChars]
	}

	stream := false
	req := &api.GenerateRequest{
		Model:  c.model,
		Prompt: fmt.Sprintf(summaryPrompt, text),
		Stream: &stream,
	}

	var out strings.Builder
	err := c.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	summary := strings.Join(strings.Fields(out.String()), " ")
	if summary == "" {
		return "", fmt.Errorf("model returned an empty summary")
	}
	return summary, nil
}

// CheckModel checks if the specified model is available
func (c *Client) CheckModel(ctx context.Context) error {
	listResp, err := c.client.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	for _, model := range listResp.Models {
		if model.Name == c.model || strings.TrimSuffix(model.Name, ":latest") == c.model {
			return nil
		}
	}

	return fmt.Errorf("model '%s' not found - run: ollama pull %s", c.model, c.model)
}

// GetModel returns the model being used
func (c *Client) GetModel() string {
	return c.model
}
