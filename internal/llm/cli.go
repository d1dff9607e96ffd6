package llm

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"diaroo/internal/logger"
)

// claudeCLI pipes the prompt through the local `claude` coding agent.
// The CLI transport is text-only, so images are dropped and the model
// works from the activity log embedded in the prompt.
type claudeCLI struct{}

func (c *claudeCLI) Name() string { return "claude-code" }

// HasCredentials is always true: the CLI manages its own authentication.
func (c *claudeCLI) HasCredentials() bool { return true }

func (c *claudeCLI) Summarize(ctx context.Context, prompt string, _ [][]byte) (string, error) {
	if _, err := exec.LookPath("claude"); err != nil {
		return "", fmt.Errorf("claude CLI not found in PATH: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "claude", "--print")
	cmd.Stdin = strings.NewReader(prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.GetLogger().Infof("Sending prompt to claude CLI (%d bytes)", len(prompt))

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("claude CLI timed out after %v", requestTimeout)
		}
		return "", fmt.Errorf("claude CLI failed: %v: %s", err, strings.TrimSpace(stderr.String()))
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return "", fmt.Errorf("claude CLI returned empty output")
	}
	return stripCodeFence(text), nil
}

// codexCLI drives `codex exec` non-interactively. Codex writes its final
// message to a file we hand it, stdout only carries the session log.
type codexCLI struct{}

func (c *codexCLI) Name() string { return "codex" }

func (c *codexCLI) HasCredentials() bool { return true }

func (c *codexCLI) Summarize(ctx context.Context, prompt string, _ [][]byte) (string, error) {
	if _, err := exec.LookPath("codex"); err != nil {
		return "", fmt.Errorf("codex CLI not found in PATH: %w", err)
	}

	outFile, err := os.CreateTemp("", "diaroo-codex-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create codex output file: %w", err)
	}
	outPath := outFile.Name()
	outFile.Close()
	defer os.Remove(outPath)

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "codex", "exec",
		"--full-auto", "--skip-git-repo-check", "--output-last-message", outPath, "-")
	cmd.Stdin = strings.NewReader(prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.GetLogger().Infof("Sending prompt to codex CLI (%d bytes)", len(prompt))

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("codex CLI timed out after %v", requestTimeout)
		}
		return "", fmt.Errorf("codex CLI failed: %v: %s", err, strings.TrimSpace(stderr.String()))
	}

	text := ""
	if data, err := os.ReadFile(outPath); err == nil {
		text = strings.TrimSpace(string(data))
	}
	if text == "" {
		text = strings.TrimSpace(stdout.String())
	}
	if text == "" {
		return "", fmt.Errorf("codex CLI returned empty output")
	}
	return stripCodeFence(text), nil
}
