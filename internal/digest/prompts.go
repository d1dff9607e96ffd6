package digest

import (
	"os"
	"path/filepath"
	"strings"
)

// Prompt templates live as plain text files next to the config so users
// can tune them without rebuilding. A missing file is seeded with the
// default so there is always something to edit, and an unreadable or empty
// file falls back to the default.

const (
	extractPromptFile = "extract_prompt.txt"
	digestPromptFile  = "digest_prompt.txt"
)

// DefaultExtractPrompt guides per-batch fact extraction. {activity_log}
// is replaced with the chunk's timestamped window list.
const DefaultExtractPrompt = `You are analyzing screenshots from a computer activity monitoring system.

Activity log for this batch:
{activity_log}

TASK: Extract factual information from each screenshot, focusing on accurate identification.

For each screenshot, identify:
1. Application name (look for title bars, app icons, menu bars, taskbar/dock)
2. Window title or document name (if visible)
3. Timestamp (from activity log)
4. Brief description of what's visible on screen (1 sentence max)

After extracting information from all screenshots, create a timeline summary (2-4 sentences) showing the sequence of applications used and main activities.

CRITICAL: Focus on reading visible text accurately. If you cannot confidently identify an application, describe what you see instead (e.g., "code editor with dark theme" rather than guessing "VSCode").`

// DefaultDigestPrompt drives the end-of-day report. {batch_summaries},
// {app_usage} and {date} are substituted before sending.
const DefaultDigestPrompt = `Generate a comprehensive daily activity digest report in markdown format based on the provided batch summaries and app usage statistics.

## Batch Summaries
{batch_summaries}

## App Usage
{app_usage}

## Report Requirements

### Structure
Format the report with the following sections:

1. **Daily Summary**
   - Write a substantial paragraph (4-6 sentences) that provides a holistic overview of the user's day
   - Blend productivity-focused tasks with reactive work patterns
   - Mention specific projects, tools, and key outcomes
   - Include quantifiable metrics where available (e.g., email counts, number of meetings)
   - Balance technical activities with administrative and collaborative work

2. **Timeline**
   - Present activities in chronological order using bullet points with time stamps
   - Use precise times (e.g., "11:45", "13:04", "14:24–15:50") from the batch summaries
   - For each time entry, describe what the user was doing in specific terms
   - Group related activities that occurred within the same time window
   - Include tool/application names and specific tasks (e.g., "Tauri Pet development in Terminal")
   - Mention concrete details like error codes, file types, or specific features being worked on

3. **Focus Analysis**
   - Divide into clear subsections with bold headers:
     - **Productive Phases**: Highlight periods of deep work and accomplishments
     - **Productivity Challenges**: Identify obstacles, distractions, or inefficiencies
     - **Behavioral Insights**: Observations about work patterns and preferences
     - **Optimization Opportunities**: Actionable suggestions for improvement
   - Use bullet points for each insight
   - Be specific and evidence-based, referencing actual activities from the day
   - Balance positive observations with constructive feedback

### Formatting Guidelines
- Use markdown heading levels: # for title, ## for main sections
- Include the date in the title: "# Daily Activity Digest Report - {date}"
- Use bold text (**text**) for subsection headers within Focus Analysis
- Use em dashes (\u2013) for time ranges in the Timeline
- Maintain a professional, analytical tone throughout
- Include specific application names, project names, and technical details

### Content Guidelines
- Synthesize information across both batch summaries and app usage data
- Identify patterns and themes rather than listing every action
- Highlight context-switching behavior when present
- Note communication platforms used for meetings
- Reference specific technical work (coding, debugging, API integration)
- Acknowledge breaks and leisure activities naturally
- Provide actionable insights in the Focus Analysis section

Date: {date}`

// LoadExtractPrompt returns the extract template stored in dir, seeding
// the file with the default when it does not exist yet.
func LoadExtractPrompt(dir string) string {
	return loadPrompt(filepath.Join(dir, extractPromptFile), DefaultExtractPrompt)
}

// LoadDigestPrompt returns the digest template stored in dir, seeding the
// file with the default when it does not exist yet.
func LoadDigestPrompt(dir string) string {
	return loadPrompt(filepath.Join(dir, digestPromptFile), DefaultDigestPrompt)
}

func loadPrompt(path, fallback string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Seeding is best-effort, the read below falls back anyway.
		if err := os.MkdirAll(filepath.Dir(path), 0755); err == nil {
			os.WriteFile(path, []byte(fallback), 0644)
		}
	}
	content, err := os.ReadFile(path)
	if err != nil || strings.TrimSpace(string(content)) == "" {
		return fallback
	}
	return string(content)
}
