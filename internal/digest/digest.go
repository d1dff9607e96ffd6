// Package digest summarizes captured activity with an LLM: screenshots
// are batched into per-chunk summaries, and the summaries are rendered
// into a daily markdown report.
package digest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"diaroo/internal/logger"
)

// GenerateDigestForDate renders the markdown report for date and returns
// its path. For today any still-unbatched frames are summarized first;
// past dates are read as-is, so regenerating an old report never touches
// the live day.
func (p *Pipeline) GenerateDigestForDate(ctx context.Context, date string) (string, error) {
	today := time.Now().Format("2006-01-02")
	if date == today {
		summary, err := p.ProcessBatch(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to flush pending batches: %w", err)
		}
		if summary != "" {
			logger.GetLogger().Info("Processed remaining screenshots before generating digest")
		}
	}

	batches, err := p.store.GetBatchesForDate(date)
	if err != nil {
		return "", err
	}
	appUsage, err := p.store.GetAppUsageForDate(date)
	if err != nil {
		return "", err
	}

	var batchText strings.Builder
	for _, batch := range batches {
		fmt.Fprintf(&batchText, "## Batch at %s\n%s\n\n", batch.Timestamp, batch.Summary)
	}

	var usageText strings.Builder
	for _, usage := range appUsage {
		// Rough minutes at the default 5s capture cadence.
		minutes := usage.Count * 5 / 60
		fmt.Fprintf(&usageText, "- %s: ~%d min\n", usage.AppName, minutes)
	}

	prompt := strings.NewReplacer(
		"{batch_summaries}", batchText.String(),
		"{app_usage}", usageText.String(),
		"{date}", date,
	).Replace(LoadDigestPrompt(p.promptDir))

	var report string
	if p.llm.HasCredentials() {
		report, err = p.llm.Summarize(ctx, prompt, nil)
		if err != nil {
			return "", fmt.Errorf("failed to generate digest: %w", err)
		}
	} else {
		report = fmt.Sprintf(
			"# Daily Activity Report - %s\n\n## Summary\nTracked %d activity batches.\n\n## App Usage\n%s\n\n## Batch Details\n%s",
			date, len(batches), usageText.String(), batchText.String())
	}

	path, err := p.shots.SaveReportForDate(report, date)
	if err != nil {
		return "", err
	}

	// A run that died between summarizing and deleting can leave frames
	// behind, sweep them now.
	if count, err := p.shots.CleanupScreenshotsForDate(date); err != nil {
		logger.GetLogger().Warnf("Failed to clean up screenshots: %v", err)
	} else if count > 0 {
		logger.GetLogger().Infof("Cleaned up %d leftover screenshots", count)
	}

	logger.GetLogger().Infof("Daily digest saved to %s", path)
	return path, nil
}
