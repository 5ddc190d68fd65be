package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"focusd/internal/modules/notify/domain"
	"focusd/internal/modules/notify/dto"
	notifyout "focusd/internal/modules/notify/port/out"
	reminderdomain "focusd/internal/modules/reminder/domain"
	apperrors "focusd/internal/platform/errors"
)

// NotifyService picks the configured notifier and verifies it before
// every delivery: a swapped binary fails the checksum, not the user.
type NotifyService struct {
	store notifyout.ManifestStore
	host  notifyout.Host
}

func NewNotifyService(store notifyout.ManifestStore, host notifyout.Host) *NotifyService {
	return &NotifyService{store: store, host: host}
}

// Active returns the first enabled, valid manifest.
func (s *NotifyService) Active(ctx context.Context) (domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return domain.Manifest{}, err
	}
	for _, m := range manifests {
		if !m.Enabled {
			continue
		}
		if err := m.Validate(); err != nil {
			return domain.Manifest{}, err
		}
		return m, nil
	}
	return domain.Manifest{}, apperrors.ErrNotFound
}

func (s *NotifyService) Deliver(ctx context.Context, prompt reminderdomain.Prompt) (reminderdomain.Answer, error) {
	manifest, err := s.Active(ctx)
	if err != nil {
		return "", err
	}
	if err := checksumMatches(manifest.Binary, manifest.SHA256); err != nil {
		return "", err
	}
	return s.host.Deliver(ctx, manifest, prompt)
}

func (s *NotifyService) List(ctx context.Context) ([]dto.NotifierInfo, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NotifierInfo, 0, len(manifests))
	for _, m := range manifests {
		out = append(out, dto.NotifierInfo{Name: m.Name, Version: m.Version, Binary: m.Binary, Enabled: m.Enabled})
	}
	return out, nil
}

// Doctor checks every manifest end to end: shape, binary presence,
// checksum, and a live handshake for enabled ones.
func (s *NotifyService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.BinaryReachable = fileExists(m.Binary)
		if result.BinaryReachable {
			result.ChecksumValid = checksumMatches(m.Binary, m.SHA256) == nil
		}
		if result.BinaryReachable && result.ChecksumValid && m.Enabled && s.host != nil {
			if err := s.host.CheckLifecycle(ctx, m); err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
			}
		}
		if !result.BinaryReachable {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
		}
		if result.BinaryReachable && !result.ChecksumValid {
			result.Error = "checksum mismatch"
		}
		results = append(results, result)
	}
	return results, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func checksumMatches(path, want string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open notifier binary: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash notifier binary: %w", err)
	}
	if hex.EncodeToString(h.Sum(nil)) != want {
		return domain.ErrChecksumMismatch
	}
	return nil
}
