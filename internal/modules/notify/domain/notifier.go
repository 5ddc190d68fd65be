package domain

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrNotifierDisabled = errors.New("notifier is disabled")
	ErrChecksumMismatch = errors.New("notifier checksum mismatch")
	ErrNotifierTimeout  = errors.New("notifier timeout")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Manifest describes one external notifier binary.
type Manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Binary  string `json:"binary"`
	SHA256  string `json:"sha256"`
	Enabled bool   `json:"enabled"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("notifier name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("notifier version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("notifier binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("notifier sha256 must be lowercase 64-char hex")
	}
	return nil
}

type Metadata struct {
	Name    string
	Version string
}
