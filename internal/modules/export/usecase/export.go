package usecase

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"encoding/csv"

	exportdto "focusd/internal/modules/export/dto"
	exportin "focusd/internal/modules/export/port/in"
	trackerdto "focusd/internal/modules/tracker/dto"
	trackerin "focusd/internal/modules/tracker/port/in"
)

var header = []string{
	"session_id", "category", "task", "started_at", "ended_at",
	"gross_min", "net_focused_min", "break_min", "procrastination_min",
	"longest_focus_block_min", "interruption_count", "focus_ratio",
	"burnout_detected", "procrastination_detected",
}

type Interactor struct {
	tracker trackerin.Usecase
}

func NewInteractor(tracker trackerin.Usecase) exportin.Usecase {
	return &Interactor{tracker: tracker}
}

func (i *Interactor) ExportCSV(ctx context.Context, w io.Writer, input exportdto.ExportInput) (int, error) {
	sessions, err := i.tracker.ListSessions(ctx, trackerdto.ListInput{
		Category: input.Category,
		From:     input.From,
		To:       input.To,
	})
	if err != nil {
		return 0, err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range sessions {
		row := []string{
			s.SessionID,
			s.CategoryName,
			s.TaskName,
			s.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
			s.EndedAt.Format("2006-01-02T15:04:05Z07:00"),
			minutes(s.GrossMin),
			minutes(s.NetFocusedMin),
			minutes(s.BreakMin),
			minutes(s.ProcrastinationMin),
			minutes(s.LongestFocusBlockMin),
			strconv.Itoa(s.InterruptionCount),
			strconv.FormatFloat(s.FocusRatio, 'f', 3, 64),
			strconv.FormatBool(s.BurnoutDetected),
			strconv.FormatBool(s.ProcrastinationDetected),
		}
		if err := writer.Write(row); err != nil {
			return 0, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}
	return len(sessions), nil
}

func minutes(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
