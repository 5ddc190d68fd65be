package domain_test

import (
	"strings"
	"testing"

	"focusd/internal/modules/notify/domain"
)

func validManifest() domain.Manifest {
	return domain.Manifest{
		Name:    "desktop",
		Version: "1.0.0",
		Binary:  "/usr/local/bin/focusd-notifier",
		SHA256:  strings.Repeat("ab", 32),
		Enabled: true,
	}
}

func TestManifestValidate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		mutate  func(*domain.Manifest)
		wantErr string
	}{
		{"valid", func(*domain.Manifest) {}, ""},
		{"missing name", func(m *domain.Manifest) { m.Name = "" }, "name is required"},
		{"missing version", func(m *domain.Manifest) { m.Version = "" }, "version is required"},
		{"missing binary", func(m *domain.Manifest) { m.Binary = "" }, "binary path is required"},
		{"short sha", func(m *domain.Manifest) { m.SHA256 = "abc123" }, "sha256"},
		{"uppercase sha", func(m *domain.Manifest) { m.SHA256 = strings.Repeat("AB", 32) }, "sha256"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := validManifest()
			tc.mutate(&m)
			err := m.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid manifest, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %v should mention %q", err, tc.wantErr)
			}
		})
	}
}
