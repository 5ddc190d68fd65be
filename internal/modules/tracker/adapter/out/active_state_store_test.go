package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"focusd/internal/modules/tracker/adapter/out"
	"focusd/internal/modules/tracker/domain"
)

func TestActiveStateRoundTrip(t *testing.T) {
	t.Parallel()
	dataDir := t.TempDir()
	store := out.NewFileActiveStateStore(dataDir)
	state := domain.ActiveState{
		SchemaVersion: domain.SchemaVersion,
		SessionID:     "sess-1",
		CategoryID:    "cat-1",
		CategoryName:  "deep-work",
		State:         domain.StateWorking,
		StartedAt:     time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	if err := store.Save(context.Background(), state); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != state {
		t.Fatalf("round trip drifted:\n got %+v\nwant %+v", loaded, state)
	}
}

func TestActiveStateRejectsForeignSchema(t *testing.T) {
	t.Parallel()
	dataDir := t.TempDir()
	payload := `{"schema_version": 99, "session_id": "sess-1", "state": "working"}`
	if err := os.WriteFile(filepath.Join(dataDir, "active-session.json"), []byte(payload), 0o644); err != nil {
		t.Fatalf("write state file: %v", err)
	}
	store := out.NewFileActiveStateStore(dataDir)
	if _, err := store.Load(context.Background()); err == nil {
		t.Fatalf("a state file from another schema must not load")
	}
}
