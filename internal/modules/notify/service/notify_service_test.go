package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"focusd/internal/modules/notify/domain"
	"focusd/internal/modules/notify/service"
	reminderdomain "focusd/internal/modules/reminder/domain"
	apperrors "focusd/internal/platform/errors"
)

type fakeStore struct {
	manifests []domain.Manifest
}

func (f *fakeStore) Load(context.Context) ([]domain.Manifest, error) {
	return f.manifests, nil
}

type fakeHost struct {
	lifecycleErr error
	answer       reminderdomain.Answer
	delivered    []reminderdomain.Prompt
}

func (f *fakeHost) CheckLifecycle(context.Context, domain.Manifest) error {
	return f.lifecycleErr
}

func (f *fakeHost) GetMetadata(_ context.Context, m domain.Manifest) (domain.Metadata, error) {
	return domain.Metadata{Name: m.Name, Version: m.Version}, nil
}

func (f *fakeHost) Deliver(_ context.Context, _ domain.Manifest, prompt reminderdomain.Prompt) (reminderdomain.Answer, error) {
	f.delivered = append(f.delivered, prompt)
	return f.answer, nil
}

func writeBinary(t *testing.T, content string) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notifier")
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	sum := sha256.Sum256([]byte(content))
	return path, hex.EncodeToString(sum[:])
}

func TestDeliverVerifiesChecksumFirst(t *testing.T) {
	t.Parallel()
	path, checksum := writeBinary(t, "#!/bin/sh\nexit 0\n")
	host := &fakeHost{answer: reminderdomain.AnswerYes}
	svc := service.NewNotifyService(&fakeStore{manifests: []domain.Manifest{{
		Name: "ok", Version: "1.0.0", Binary: path, SHA256: checksum, Enabled: true,
	}}}, host)

	answer, err := svc.Deliver(context.Background(), reminderdomain.Prompt{Kind: reminderdomain.CheckBurnout})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if answer != reminderdomain.AnswerYes || len(host.delivered) != 1 {
		t.Fatalf("delivery did not reach the host: answer=%s calls=%d", answer, len(host.delivered))
	}

	// Tampered binary must fail closed.
	tampered := service.NewNotifyService(&fakeStore{manifests: []domain.Manifest{{
		Name: "bad", Version: "1.0.0", Binary: path, SHA256: strings.Repeat("ab", 32), Enabled: true,
	}}}, host)
	if _, err := tampered.Deliver(context.Background(), reminderdomain.Prompt{}); !errors.Is(err, domain.ErrChecksumMismatch) {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}
}

func TestDeliverWithoutEnabledNotifier(t *testing.T) {
	t.Parallel()
	svc := service.NewNotifyService(&fakeStore{manifests: []domain.Manifest{{
		Name: "off", Version: "1.0.0", Binary: "/bin/true", SHA256: strings.Repeat("aa", 32), Enabled: false,
	}}}, &fakeHost{})
	if _, err := svc.Deliver(context.Background(), reminderdomain.Prompt{}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDoctorReportsEachFailureMode(t *testing.T) {
	t.Parallel()
	path, checksum := writeBinary(t, "binary-bytes")
	host := &fakeHost{lifecycleErr: fmt.Errorf("handshake refused")}
	svc := service.NewNotifyService(&fakeStore{manifests: []domain.Manifest{
		{Name: "healthy", Version: "1.0.0", Binary: path, SHA256: checksum, Enabled: false},
		{Name: "missing", Version: "1.0.0", Binary: "/nonexistent/bin", SHA256: checksum, Enabled: true},
		{Name: "tampered", Version: "1.0.0", Binary: path, SHA256: strings.Repeat("cd", 32), Enabled: true},
		{Name: "dead", Version: "1.0.0", Binary: path, SHA256: checksum, Enabled: true},
		{Name: "", Version: "", Binary: "", SHA256: ""},
	}}, host)

	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	byName := map[string]int{}
	for i, r := range results {
		byName[r.Name] = i
	}
	if r := results[byName["healthy"]]; !r.BinaryReachable || !r.ChecksumValid || r.LifecycleOK {
		t.Fatalf("disabled notifier should verify but skip lifecycle: %+v", r)
	}
	if r := results[byName["missing"]]; r.BinaryReachable || !strings.Contains(r.Error, "does not exist") {
		t.Fatalf("missing binary not reported: %+v", r)
	}
	if r := results[byName["tampered"]]; r.ChecksumValid || r.Error != "checksum mismatch" {
		t.Fatalf("tampered binary not reported: %+v", r)
	}
	if r := results[byName["dead"]]; r.LifecycleOK || !strings.Contains(r.Error, "handshake refused") {
		t.Fatalf("dead notifier not reported: %+v", r)
	}
	if r := results[byName[""]]; r.Error == "" {
		t.Fatalf("invalid manifest should carry its validation error: %+v", r)
	}
}
