package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/cineverse-labs/cineverse/internal/providers"
)

// DefaultModel is used when OLLAMA_MODEL is not set
const DefaultModel = "llama3.1:8b"

// Ollama is a provider for Ollama
type Ollama struct {
	baseURL string
}

// New returns a new Ollama provider
func New() *Ollama {
	return &Ollama{}
}

// NewWithURL returns a provider pinned to the given server instead of OLLAMA_URL
func NewWithURL(baseURL string) *Ollama {
	return &Ollama{baseURL: baseURL}
}

// GenerateText runs the prompt through a local Ollama server
func (o *Ollama) GenerateText(ctx context.Context, config providers.Config) (string, error) {
	ollamaURL := o.baseURL
	if ollamaURL == "" {
		ollamaURL = os.Getenv("OLLAMA_URL")
	}
	if ollamaURL == "" {
		ollamaURL = "http://localhost:11434"
	}
	url := ollamaURL + "/api/generate"

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	body := map[string]any{
		"model":  model,
		"prompt": config.Prompt,
		"stream": false,
	}
	if config.Temperature != nil {
		body["options"] = map[string]any{
			"temperature": *config.Temperature,
		}
	}
	if config.ResponseSchema != nil {
		// Ollama accepts a JSON schema in "format" for structured output
		body["format"] = config.ResponseSchema.JSON()
	}

	requestBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	return response.Response, nil
}
