package openai

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

// DefaultModel is used when OPENAI_MODEL is not set
const DefaultModel = "gpt-4o-mini"

// wrapKey holds a top-level array schema; structured outputs must be objects
const wrapKey = "items"

// OpenAI is a provider for OpenAI
type OpenAI struct {
	baseURL string
}

// New returns a new OpenAI provider
func New() *OpenAI {
	return &OpenAI{}
}

// NewWithURL returns a provider that talks to an OpenAI-compatible server
func NewWithURL(baseURL string) *OpenAI {
	return &OpenAI{baseURL: baseURL}
}

// GenerateText runs the prompt through the chat completions API
func (o *OpenAI) GenerateText(ctx context.Context, config providers.Config) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	baseURL := o.baseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	url := baseURL + "/v1/chat/completions"

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	body := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": config.Prompt,
			},
		},
	}
	if config.Temperature != nil {
		body["temperature"] = *config.Temperature
	}
	wrapped := false
	if config.ResponseSchema != nil {
		schema := config.ResponseSchema
		if schema.Type != providers.TypeObject {
			schema = &providers.Schema{
				Type:       providers.TypeObject,
				Properties: map[string]*providers.Schema{wrapKey: schema},
				Required:   []string{wrapKey},
			}
			wrapped = true
		}
		body["response_format"] = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "response",
				"schema": schema.JSON(),
			},
		}
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
	req.Header.Set("Authorization", "Bearer "+apiKey)

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
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	content := response.Choices[0].Message.Content
	if !wrapped {
		return content, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return "", fmt.Errorf("failed to unwrap structured response: %w", err)
	}
	inner, ok := envelope[wrapKey]
	if !ok {
		return "", fmt.Errorf("structured response is missing %q", wrapKey)
	}
	return string(inner), nil
}
