package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"focusd/internal/modules/reminder/domain"
	"focusd/internal/modules/reminder/service"
	"focusd/internal/platform/clock"
	"focusd/internal/platform/id"
)

type scriptedNotifier struct {
	mu      sync.Mutex
	answers []domain.Answer
	err     error
	prompts chan domain.Prompt
}

func newScriptedNotifier(answers ...domain.Answer) *scriptedNotifier {
	return &scriptedNotifier{answers: answers, prompts: make(chan domain.Prompt, 16)}
}

func (n *scriptedNotifier) Notify(_ context.Context, prompt domain.Prompt) (domain.Answer, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.prompts <- prompt
	if n.err != nil {
		return "", n.err
	}
	if len(n.answers) == 0 {
		return domain.AnswerNone, nil
	}
	answer := n.answers[0]
	n.answers = n.answers[1:]
	return answer, nil
}

type memoryLogStore struct {
	mu      sync.Mutex
	entries []domain.Log
}

func (m *memoryLogStore) Append(_ context.Context, entry domain.Log) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryLogStore) SetResponse(_ context.Context, logID, response string, respondedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		if m.entries[i].ID == logID {
			m.entries[i].Response = response
			m.entries[i].RespondedAt = respondedAt
			return nil
		}
	}
	return fmt.Errorf("log %s not found", logID)
}

func (m *memoryLogStore) ListBySession(_ context.Context, sessionID string) ([]domain.Log, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Log{}
	for _, e := range m.entries {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryLogStore) snapshot() []domain.Log {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Log{}, m.entries...)
}

type fixedIntervals struct {
	burnout time.Duration
	brk     time.Duration
	ok      bool
}

func (f fixedIntervals) TimeToBurnout(context.Context, string) (time.Duration, bool) {
	return f.burnout, f.ok
}

func (f fixedIntervals) TimeToBreak(context.Context, string) (time.Duration, bool) {
	return f.brk, f.ok
}

type recordingControl struct {
	mu       sync.Mutex
	burnouts []bool
	procEnds int
	breaks   int
}

func (c *recordingControl) RecordBurnout(_ context.Context, confirmed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.burnouts = append(c.burnouts, confirmed)
	return nil
}

func (c *recordingControl) EndProcrastination(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.procEnds++
	return nil
}

func (c *recordingControl) EndBreak(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.breaks++
	return nil
}

func waitPrompt(t *testing.T, prompts chan domain.Prompt) domain.Prompt {
	t.Helper()
	select {
	case p := <-prompts:
		return p
	case <-time.After(2 * time.Second):
		t.Fatalf("no prompt arrived in time")
		return domain.Prompt{}
	}
}

func assertNoPrompt(t *testing.T, prompts chan domain.Prompt, window time.Duration) {
	t.Helper()
	select {
	case p := <-prompts:
		t.Fatalf("unexpected prompt %+v", p)
	case <-time.After(window):
	}
}

func TestNagFiresOnlyWhileProcrastinating(t *testing.T) {
	t.Parallel()
	notifier := newScriptedNotifier(domain.AnswerNo)
	logs := &memoryLogStore{}
	control := &recordingControl{}
	sched := service.NewScheduler(clock.SystemClock{}, id.RandomHex{}, notifier, logs, fixedIntervals{}, control, service.Intervals{
		Burnout: time.Hour,
		Nag:     30 * time.Millisecond,
		Break:   time.Hour,
	})
	sched.Run()
	defer sched.Stop()

	sched.EnterWorking("sess-1", "cat-1")
	assertNoPrompt(t, notifier.prompts, 150*time.Millisecond)

	sched.EnterProcrastinating()
	prompt := waitPrompt(t, notifier.prompts)
	if prompt.Kind != domain.CheckProcrastination || prompt.Escalation != 0 {
		t.Fatalf("nag = %+v, want procrastination check at escalation 0", prompt)
	}
	entries := logs.snapshot()
	if len(entries) != 1 || entries[0].Kind != domain.CheckProcrastination {
		t.Fatalf("logs = %+v, want exactly one nag entry", entries)
	}
}

func TestNagEscalatesWhileDenied(t *testing.T) {
	t.Parallel()
	notifier := newScriptedNotifier(domain.AnswerNo, domain.AnswerNo)
	logs := &memoryLogStore{}
	control := &recordingControl{}
	sched := service.NewScheduler(clock.SystemClock{}, id.RandomHex{}, notifier, logs, fixedIntervals{}, control, service.Intervals{
		Burnout: time.Hour,
		Nag:     20 * time.Millisecond,
		Break:   time.Hour,
	})
	sched.Run()
	defer sched.Stop()

	sched.EnterWorking("sess-1", "cat-1")
	sched.EnterProcrastinating()
	first := waitPrompt(t, notifier.prompts)
	if first.Kind != domain.CheckProcrastination || first.Escalation != 0 {
		t.Fatalf("first nag = %+v, want escalation 0", first)
	}
	second := waitPrompt(t, notifier.prompts)
	if second.Escalation != 1 {
		t.Fatalf("second nag escalation = %d, want 1", second.Escalation)
	}
}

func TestConfirmedNagReturnsToWorkAndStopsNagging(t *testing.T) {
	t.Parallel()
	notifier := newScriptedNotifier(domain.AnswerYes)
	logs := &memoryLogStore{}
	control := &recordingControl{}
	sched := service.NewScheduler(clock.SystemClock{}, id.RandomHex{}, notifier, logs, fixedIntervals{}, control, service.Intervals{
		Burnout: time.Hour,
		Nag:     20 * time.Millisecond,
		Break:   time.Hour,
	})
	sched.Run()
	defer sched.Stop()

	sched.EnterWorking("sess-1", "cat-1")
	sched.EnterProcrastinating()
	prompt := waitPrompt(t, notifier.prompts)
	if prompt.Kind != domain.CheckProcrastination {
		t.Fatalf("prompt kind = %s", prompt.Kind)
	}
	assertNoPrompt(t, notifier.prompts, 100*time.Millisecond)

	control.mu.Lock()
	procEnds := control.procEnds
	control.mu.Unlock()
	if procEnds != 1 {
		t.Fatalf("procrastination ends = %d, want 1", procEnds)
	}
}

func TestBurnoutCheckKeepsFiringAfterConfirmation(t *testing.T) {
	t.Parallel()
	notifier := newScriptedNotifier(domain.AnswerYes, domain.AnswerNo)
	logs := &memoryLogStore{}
	control := &recordingControl{}
	sched := service.NewScheduler(clock.SystemClock{}, id.RandomHex{}, notifier, logs, fixedIntervals{}, control, service.Intervals{
		Burnout: 20 * time.Millisecond,
		Nag:     time.Hour,
		Break:   time.Hour,
	})
	sched.Run()
	defer sched.Stop()

	sched.EnterWorking("sess-1", "cat-1")
	first := waitPrompt(t, notifier.prompts)
	if first.Kind != domain.CheckBurnout {
		t.Fatalf("prompt kind = %s", first.Kind)
	}
	second := waitPrompt(t, notifier.prompts)
	if second.Kind != domain.CheckBurnout {
		t.Fatalf("second prompt kind = %s, want the re-armed burnout check", second.Kind)
	}

	control.mu.Lock()
	defer control.mu.Unlock()
	if len(control.burnouts) < 2 || !control.burnouts[0] || control.burnouts[1] {
		t.Fatalf("burnout records = %+v, want confirmed then denied", control.burnouts)
	}
}

func TestBreakElapsedConfirmationResumesWork(t *testing.T) {
	t.Parallel()
	notifier := newScriptedNotifier(domain.AnswerYes)
	logs := &memoryLogStore{}
	control := &recordingControl{}
	sched := service.NewScheduler(clock.SystemClock{}, id.RandomHex{}, notifier, logs, fixedIntervals{}, control, service.Intervals{
		Burnout: time.Hour,
		Nag:     time.Hour,
		Break:   20 * time.Millisecond,
	})
	sched.Run()
	defer sched.Stop()

	sched.EnterWorking("sess-1", "cat-1")
	sched.EnterBreak()
	prompt := waitPrompt(t, notifier.prompts)
	if prompt.Kind != domain.CheckBreakElapsed {
		t.Fatalf("prompt kind = %s", prompt.Kind)
	}

	deadlineFor := time.Now().Add(time.Second)
	for {
		control.mu.Lock()
		breaks := control.breaks
		control.mu.Unlock()
		if breaks == 1 {
			break
		}
		if time.Now().After(deadlineFor) {
			t.Fatalf("break end never reached the session machine")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNotifierFailureLogsAndRearms(t *testing.T) {
	t.Parallel()
	notifier := newScriptedNotifier()
	notifier.err = fmt.Errorf("plugin unreachable")
	logs := &memoryLogStore{}
	control := &recordingControl{}
	sched := service.NewScheduler(clock.SystemClock{}, id.RandomHex{}, notifier, logs, fixedIntervals{}, control, service.Intervals{
		Burnout: time.Hour,
		Nag:     20 * time.Millisecond,
		Break:   time.Hour,
	})
	sched.Run()
	defer sched.Stop()

	sched.EnterWorking("sess-1", "cat-1")
	sched.EnterProcrastinating()
	waitPrompt(t, notifier.prompts)
	waitPrompt(t, notifier.prompts)

	entries := logs.snapshot()
	if len(entries) == 0 {
		t.Fatalf("expected reminder logs")
	}
	if entries[0].Response != domain.ResponseFailed {
		t.Fatalf("first response = %q, want failed", entries[0].Response)
	}
}

func TestSessionEndCancelsDeadlines(t *testing.T) {
	t.Parallel()
	notifier := newScriptedNotifier()
	logs := &memoryLogStore{}
	control := &recordingControl{}
	sched := service.NewScheduler(clock.SystemClock{}, id.RandomHex{}, notifier, logs, fixedIntervals{}, control, service.Intervals{
		Burnout: time.Hour,
		Nag:     60 * time.Millisecond,
		Break:   time.Hour,
	})
	sched.Run()
	defer sched.Stop()

	sched.EnterWorking("sess-1", "cat-1")
	sched.EnterProcrastinating()
	sched.SessionEnded()
	assertNoPrompt(t, notifier.prompts, 150*time.Millisecond)
}

func TestLearnedIntervalsDriveDeadlinesAndAreLogged(t *testing.T) {
	t.Parallel()
	notifier := newScriptedNotifier(domain.AnswerNo)
	logs := &memoryLogStore{}
	control := &recordingControl{}
	sched := service.NewScheduler(clock.SystemClock{}, id.RandomHex{}, notifier, logs,
		fixedIntervals{burnout: 20 * time.Millisecond, brk: time.Hour, ok: true},
		control, service.Intervals{
			Burnout:   time.Hour,
			Nag:       time.Hour,
			Break:     time.Hour,
			MLEnabled: true,
		})
	sched.Run()
	defer sched.Stop()

	sched.EnterWorking("sess-1", "cat-1")
	prompt := waitPrompt(t, notifier.prompts)
	if prompt.Kind != domain.CheckBurnout {
		t.Fatalf("prompt kind = %s, want learned burnout deadline first", prompt.Kind)
	}
	if prompt.PredictedMin <= 0 {
		t.Fatalf("prompt should carry the predicted interval, got %v", prompt.PredictedMin)
	}
	entries := logs.snapshot()
	if len(entries) != 1 || entries[0].PredictedMin <= 0 {
		t.Fatalf("log should record the predicted interval: %+v", entries)
	}
}

func TestManualPinOverridesLearnedInterval(t *testing.T) {
	t.Parallel()
	notifier := newScriptedNotifier()
	logs := &memoryLogStore{}
	control := &recordingControl{}
	// The model says 20ms but the user pinned a long manual interval.
	sched := service.NewScheduler(clock.SystemClock{}, id.RandomHex{}, notifier, logs,
		fixedIntervals{burnout: 20 * time.Millisecond, brk: 20 * time.Millisecond, ok: true},
		control, service.Intervals{
			Burnout:       time.Hour,
			Nag:           time.Hour,
			Break:         time.Hour,
			ManualBurnout: true,
			ManualBreak:   true,
			MLEnabled:     true,
		})
	sched.Run()
	defer sched.Stop()

	sched.EnterWorking("sess-1", "cat-1")
	assertNoPrompt(t, notifier.prompts, 150*time.Millisecond)
}
