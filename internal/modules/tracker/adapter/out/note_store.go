package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"focusd/internal/modules/tracker/domain"
	trackerout "focusd/internal/modules/tracker/port/out"
	"focusd/internal/platform/markdown"
	"focusd/internal/platform/slug"
)

// MarkdownNoteStore writes one note per finalized session, filed by date
// under <dataDir>/sessions.
type MarkdownNoteStore struct {
	dataDir string
}

func NewMarkdownNoteStore(dataDir string) trackerout.NoteStore {
	return &MarkdownNoteStore{dataDir: dataDir}
}

func (s *MarkdownNoteStore) Save(_ context.Context, session domain.Session, categoryName, taskName string) (string, error) {
	date := session.StartedAt
	dir := filepath.Join(s.dataDir, "sessions", date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create note dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.md", date.Format("150405"), slug.Make(categoryName))
	path := filepath.Join(dir, name)

	agg := session.Aggregates
	meta := map[string]any{
		"schema_version":          domain.SchemaVersion,
		"id":                      session.ID,
		"category":                categoryName,
		"task":                    taskName,
		"started_at":              session.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		"ended_at":                session.EndedAt.Format("2006-01-02T15:04:05Z07:00"),
		"gross_minutes":           agg.GrossMin,
		"net_focused_minutes":     agg.NetFocusedMin,
		"break_minutes":           agg.BreakMin,
		"procrastination_minutes": agg.ProcrastinationMin,
		"longest_focus_block":     agg.LongestFocusBlockMin,
		"interruptions":           agg.InterruptionCount,
		"focus_ratio":             agg.FocusRatio,
		"burnout":                 agg.BurnoutDetected,
	}
	body := fmt.Sprintf(
		"# Focus session %s\n\n- Category: [[%s]]\n- Net focused: %.1f minutes of %.1f\n- Interruptions: %d\n- Longest block: %.1f minutes\n",
		session.ID, categoryName, agg.NetFocusedMin, agg.GrossMin, agg.InterruptionCount, agg.LongestFocusBlockMin,
	)
	rendered, err := markdown.RenderFrontmatter(meta, body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write session note: %w", err)
	}
	return path, nil
}
