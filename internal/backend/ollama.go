package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const querySystemPrompt = `You are a voice assistant. The user's question was
transcribed from speech and your answer will be spoken aloud, so answer in one
or two short sentences of plain prose. No markdown, no lists.`

// Ollama answers general queries through a local Ollama daemon, using its
// OpenAI-compatible chat completion endpoint.
type Ollama struct {
	client     openai.Client
	httpClient *http.Client
	baseURL    string
	model      string
}

// NewOllama creates a client for the Ollama daemon at baseURL (e.g.
// http://localhost:11434/v1).
func NewOllama(baseURL, model string) *Ollama {
	return &Ollama{
		client: openai.NewClient(
			option.WithBaseURL(baseURL),
			// Ollama ignores the key but the client requires one
			option.WithAPIKey("ollama"),
		),
		httpClient: &http.Client{},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
	}
}

// Name identifies the backend in logs and metrics.
func (o *Ollama) Name() string { return "ollama" }

// Generate asks the local model for a spoken-style answer.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(querySystemPrompt),
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(o.model),
	})
	if err != nil {
		if isConnectionError(err) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", &ExecError{Backend: o.Name(), Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &ExecError{Backend: o.Name(), Err: fmt.Errorf("no choices in response")}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &ExecError{Backend: o.Name(), Err: fmt.Errorf("empty message content")}
	}

	return content, nil
}

// Available probes the daemon's model listing endpoint.
func (o *Ollama) Available(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/models", nil)
	if err != nil {
		return err
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: ollama returned status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}
