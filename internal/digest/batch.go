package digest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"diaroo/internal/llm"
	"diaroo/internal/logger"
	"diaroo/internal/storage"
)

// Free-tier vision models cap image uploads at ten per request.
const maxImagesPerRequest = 10

// Pipeline turns captured frames into batch summaries and batch summaries
// into the daily report.
type Pipeline struct {
	store     *storage.ActivityStore
	shots     *storage.ScreenshotStore
	llm       llm.Client
	promptDir string
}

// NewPipeline wires the pipeline to its stores and LLM client. promptDir
// holds the editable prompt templates.
func NewPipeline(store *storage.ActivityStore, shots *storage.ScreenshotStore, client llm.Client, promptDir string) *Pipeline {
	return &Pipeline{store: store, shots: shots, llm: client, promptDir: promptDir}
}

// ProcessBatch summarizes every unbatched entry in chunks of up to ten,
// each chunk as its own LLM request. Chunks commit independently: a
// failure keeps the chunks already summarized and leaves the rest
// unbatched for the next run. Returns the last chunk's summary, or ""
// when there was nothing to do.
func (p *Pipeline) ProcessBatch(ctx context.Context) (string, error) {
	entries, err := p.store.GetUnbatchedEntries()
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", nil
	}

	totalChunks := (len(entries) + maxImagesPerRequest - 1) / maxImagesPerRequest
	lastSummary := ""
	for i := 0; i < len(entries); i += maxImagesPerRequest {
		end := i + maxImagesPerRequest
		if end > len(entries) {
			end = len(entries)
		}
		chunk := entries[i:end]
		logger.GetLogger().Infof("Processing chunk %d/%d (%d entries)", i/maxImagesPerRequest+1, totalChunks, len(chunk))
		summary, err := p.processChunk(ctx, chunk)
		if err != nil {
			return "", err
		}
		lastSummary = summary
	}
	return lastSummary, nil
}

// processChunk loads the chunk's images, asks the LLM for a summary,
// stores it, marks the entries batched, and deletes their screenshots.
func (p *Pipeline) processChunk(ctx context.Context, entries []*storage.ActivityEntry) (string, error) {
	batchID := uuid.New().String()

	// Entries whose file has vanished still belong to the batch, the
	// model just sees fewer images.
	var images [][]byte
	for _, entry := range entries {
		if data, err := os.ReadFile(entry.ScreenshotPath); err == nil {
			images = append(images, data)
		}
	}

	contextLines := make([]string, 0, len(entries))
	for _, entry := range entries {
		contextLines = append(contextLines, fmt.Sprintf("[%s] %s - %s", entry.Timestamp, entry.AppName, entry.WindowTitle))
	}
	prompt := strings.ReplaceAll(LoadExtractPrompt(p.promptDir), "{activity_log}", strings.Join(contextLines, "\n"))

	var summary string
	if len(images) > 0 && p.llm.HasCredentials() {
		var err error
		summary, err = p.llm.Summarize(ctx, prompt, images)
		if err != nil {
			return "", fmt.Errorf("failed to summarize batch: %w", err)
		}
	} else {
		summary = fallbackSummary(entries)
	}

	timestamp := time.Now().Format(time.RFC3339)
	if err := p.store.InsertBatchSummary(batchID, timestamp, summary, len(entries)); err != nil {
		return "", err
	}

	entryIDs := make([]int64, 0, len(entries))
	for _, entry := range entries {
		entryIDs = append(entryIDs, entry.ID)
	}
	if err := p.store.MarkEntriesBatched(entryIDs, batchID); err != nil {
		return "", err
	}

	// Frames are only needed until they have been summarized.
	for _, entry := range entries {
		if err := p.shots.DeleteScreenshot(entry.ScreenshotPath); err != nil {
			logger.GetLogger().Warnf("Failed to delete screenshot %s: %v", entry.ScreenshotPath, err)
		}
	}

	logger.GetLogger().Infof("Batch %s processed: %d entries, screenshots cleaned up", batchID, len(entries))
	return summary, nil
}

// fallbackSummary stands in when no LLM call is possible: the entry count
// plus the distinct app names in first-seen order.
func fallbackSummary(entries []*storage.ActivityEntry) string {
	seen := make(map[string]bool)
	apps := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.AppName == "" || seen[entry.AppName] {
			continue
		}
		seen[entry.AppName] = true
		apps = append(apps, entry.AppName)
	}
	if len(apps) == 0 {
		apps = append(apps, "unknown")
	}
	return fmt.Sprintf("Batch of %d screenshots. Apps used: %s", len(entries), strings.Join(apps, ", "))
}
