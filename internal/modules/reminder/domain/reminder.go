package domain

import (
	"fmt"
	"time"
)

// CheckKind names one scheduled well-being check.
type CheckKind string

const (
	CheckBurnout         CheckKind = "burnout_check"
	CheckProcrastination CheckKind = "procrastination_nag"
	CheckBreakElapsed    CheckKind = "break_elapsed"
)

func (k CheckKind) Validate() error {
	switch k {
	case CheckBurnout, CheckProcrastination, CheckBreakElapsed:
		return nil
	}
	return fmt.Errorf("unknown check kind %q", k)
}

// Answer is what the user said to a prompt. AnswerNone covers dismissed
// or timed-out prompts; ResponseFailed marks a notifier delivery error.
type Answer string

const (
	AnswerYes  Answer = "yes"
	AnswerNo   Answer = "no"
	AnswerNone Answer = "none"
)

const ResponseFailed = "failed"

// Prompt is one outbound yes/no question.
type Prompt struct {
	Kind         CheckKind
	Message      string
	PredictedMin float64
	Escalation   int
}

// Log is one persisted firing. Response is the only field written after
// insert.
type Log struct {
	ID           string
	SessionID    string
	Kind         CheckKind
	FiredAt      time.Time
	PredictedMin float64
	Response     string
	RespondedAt  time.Time
}

// Message renders the prompt text for a kind at a given escalation level.
func Message(kind CheckKind, escalation int) string {
	switch kind {
	case CheckBurnout:
		return "You have been working for a while. Feeling burned out?"
	case CheckProcrastination:
		if escalation > 0 {
			return fmt.Sprintf("Still procrastinating. Back to work? (nag #%d)", escalation+1)
		}
		return "You marked yourself as procrastinating. Ready to get back to work?"
	case CheckBreakElapsed:
		return "Your break has run long. Back to work?"
	}
	return ""
}
