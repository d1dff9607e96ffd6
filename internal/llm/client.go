// Package llm provides the summarization clients used by the batch
// pipeline: the OpenRouter and Ollama HTTP APIs plus the claude and codex
// command line tools.
package llm

import (
	"context"
	"strings"
	"time"
)

// requestTimeout bounds one summarization call. Vision models chewing on
// ten images can be slow, local CLI agents slower still.
const requestTimeout = 15 * time.Minute

// Client produces a text summary from a prompt and a set of JPEG frames.
type Client interface {
	// Summarize sends the prompt with the attached images and returns the
	// model's text with any wrapping code fence removed.
	Summarize(ctx context.Context, prompt string, images [][]byte) (string, error)
	// HasCredentials reports whether the client is usable as configured.
	// Callers fall back to a deterministic summary when it is false.
	HasCredentials() bool
	// Name identifies the provider in logs and status output.
	Name() string
}

// New selects the implementation for the configured provider name.
// Unknown names get the OpenRouter client, matching the config default.
func New(provider, apiKey, model, endpoint string) Client {
	switch provider {
	case "claude-code":
		return &claudeCLI{}
	case "codex":
		return &codexCLI{}
	case "ollama":
		return newOllamaClient(model, endpoint)
	default:
		return newOpenRouterClient(apiKey, model, endpoint)
	}
}

// stripCodeFence unwraps a response delivered as a fenced block, e.g.
// ```markdown ... ```, and leaves anything else untouched.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 3 {
		return text
	}
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			return strings.TrimSpace(strings.Join(lines[1:i], "\n"))
		}
	}
	return text
}
