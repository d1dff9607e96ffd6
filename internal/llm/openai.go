package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"diaroo/internal/logger"
)

const (
	openRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	ollamaEndpoint     = "http://localhost:11434/v1/chat/completions"
	maxTokens          = 2048
)

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
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
}

// openAIClient speaks the OpenAI-compatible chat completions protocol used
// by both OpenRouter and a local Ollama server.
type openAIClient struct {
	name        string
	apiKey      string
	model       string
	endpoint    string
	requiresKey bool
	httpClient  *http.Client
}

func newOpenRouterClient(apiKey, model, endpoint string) *openAIClient {
	if endpoint == "" {
		endpoint = openRouterEndpoint
	}
	return &openAIClient{
		name:        "openrouter",
		apiKey:      apiKey,
		model:       model,
		endpoint:    endpoint,
		requiresKey: true,
		httpClient:  &http.Client{Timeout: requestTimeout},
	}
}

func newOllamaClient(model, endpoint string) *openAIClient {
	resolved := ollamaEndpoint
	if endpoint != "" {
		resolved = strings.TrimRight(endpoint, "/") + "/v1/chat/completions"
	}
	return &openAIClient{
		name:       "ollama",
		model:      model,
		endpoint:   resolved,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

func (c *openAIClient) Name() string { return c.name }

func (c *openAIClient) HasCredentials() bool {
	if c.requiresKey {
		return c.apiKey != ""
	}
	return true
}

func (c *openAIClient) Summarize(ctx context.Context, prompt string, images [][]byte) (string, error) {
	content := []contentPart{{Type: "text", Text: prompt}}
	for _, img := range images {
		content = append(content, contentPart{
			Type: "image_url",
			ImageURL: &imageURL{
				URL: fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(img)),
			},
		})
	}

	reqBody, err := json.Marshal(chatRequest{
		Model:     c.model,
		Messages:  []chatMessage{{Role: "user", Content: content}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.requiresKey {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	logger.GetLogger().Infof("Sending %d images to %s (%s)", len(images), c.name, c.model)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", fmt.Errorf("API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("LLM returned empty response")
	}
	return stripCodeFence(parsed.Choices[0].Message.Content), nil
}
