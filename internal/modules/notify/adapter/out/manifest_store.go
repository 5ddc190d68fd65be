package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"focusd/internal/modules/notify/domain"
	notifyout "focusd/internal/modules/notify/port/out"
)

// FileManifestStore reads notifier manifests from
// <dataDir>/notifiers/notifiers.json. Relative binary paths resolve
// against the data dir.
type FileManifestStore struct {
	basePath string
	path     string
}

func NewFileManifestStore(basePath string) notifyout.ManifestStore {
	return &FileManifestStore{basePath: basePath, path: filepath.Join(basePath, "notifiers", "notifiers.json")}
}

func (s *FileManifestStore) Load(_ context.Context) ([]domain.Manifest, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Manifest{}, nil
		}
		return nil, fmt.Errorf("read notifier manifest store: %w", err)
	}
	var manifests []domain.Manifest
	decoder := json.NewDecoder(bytes.NewReader(b))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&manifests); err != nil {
		return nil, fmt.Errorf("decode notifier manifests: %w", err)
	}
	for i := range manifests {
		if manifests[i].Binary != "" && !filepath.IsAbs(manifests[i].Binary) {
			manifests[i].Binary = filepath.Clean(filepath.Join(s.basePath, manifests[i].Binary))
		}
	}
	return manifests, nil
}
