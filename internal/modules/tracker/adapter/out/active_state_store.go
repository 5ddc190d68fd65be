package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"focusd/internal/modules/tracker/domain"
	trackerout "focusd/internal/modules/tracker/port/out"
	apperrors "focusd/internal/platform/errors"
)

// FileActiveStateStore keeps the running machine in a JSON file so a
// crashed or restarted process resumes the same session.
type FileActiveStateStore struct {
	path string
}

func NewFileActiveStateStore(dataDir string) trackerout.ActiveStateStore {
	return &FileActiveStateStore{path: filepath.Join(dataDir, "active-session.json")}
}

func (s *FileActiveStateStore) Save(_ context.Context, state domain.ActiveState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal active state: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		return fmt.Errorf("write active state: %w", err)
	}
	return nil
}

func (s *FileActiveStateStore) Load(_ context.Context) (domain.ActiveState, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ActiveState{}, apperrors.ErrNoActiveSession
		}
		return domain.ActiveState{}, fmt.Errorf("read active state: %w", err)
	}
	state := domain.ActiveState{}
	if err := json.Unmarshal(payload, &state); err != nil {
		return domain.ActiveState{}, fmt.Errorf("decode active state: %w", err)
	}
	if state.SchemaVersion != domain.SchemaVersion {
		return domain.ActiveState{}, fmt.Errorf("active state schema version %d, want %d", state.SchemaVersion, domain.SchemaVersion)
	}
	if state.SessionID == "" {
		return domain.ActiveState{}, apperrors.ErrNoActiveSession
	}
	return state, nil
}

func (s *FileActiveStateStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("clear active state: %w", err)
	}
	return nil
}
