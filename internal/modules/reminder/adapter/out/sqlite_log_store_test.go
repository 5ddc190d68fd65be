package out_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"focusd/internal/modules/reminder/adapter/out"
	"focusd/internal/modules/reminder/domain"
	trackerout "focusd/internal/modules/tracker/adapter/out"
	apperrors "focusd/internal/platform/errors"
)

func TestLogRoundTripWithResponseWriteBack(t *testing.T) {
	t.Parallel()
	db, err := trackerout.OpenDB(filepath.Join(t.TempDir(), "focusd.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	store, err := out.NewSQLiteLogStore(context.Background(), db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	firedAt := time.Date(2026, 3, 20, 10, 45, 0, 0, time.UTC)
	entry := domain.Log{
		ID:           "log-1",
		SessionID:    "sess-1",
		Kind:         domain.CheckBurnout,
		FiredAt:      firedAt,
		PredictedMin: 42.5,
	}
	if err := store.Append(ctx, entry); err != nil {
		t.Fatalf("append: %v", err)
	}

	respondedAt := firedAt.Add(10 * time.Second)
	if err := store.SetResponse(ctx, "log-1", string(domain.AnswerYes), respondedAt); err != nil {
		t.Fatalf("set response: %v", err)
	}

	logs, err := store.ListBySession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(logs))
	}
	got := logs[0]
	if got.Response != "yes" || !got.RespondedAt.Equal(respondedAt) {
		t.Fatalf("response write-back lost: %+v", got)
	}
	if got.PredictedMin != 42.5 || !got.FiredAt.Equal(firedAt) {
		t.Fatalf("log fields lost on round trip: %+v", got)
	}
}

func TestSetResponseOnMissingLog(t *testing.T) {
	t.Parallel()
	db, err := trackerout.OpenDB(filepath.Join(t.TempDir(), "focusd.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	store, err := out.NewSQLiteLogStore(context.Background(), db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	err = store.SetResponse(context.Background(), "missing", "yes", time.Now())
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAppendRejectsUnknownKind(t *testing.T) {
	t.Parallel()
	db, err := trackerout.OpenDB(filepath.Join(t.TempDir(), "focusd.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	store, err := out.NewSQLiteLogStore(context.Background(), db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Append(context.Background(), domain.Log{ID: "x", Kind: "bogus"}); err == nil {
		t.Fatalf("expected validation error")
	}
}
