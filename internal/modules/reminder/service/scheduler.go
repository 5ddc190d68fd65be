package service

import (
	"context"
	"log"
	"time"

	"focusd/internal/modules/reminder/domain"
	reminderout "focusd/internal/modules/reminder/port/out"
	"focusd/internal/platform/clock"
	"focusd/internal/platform/id"
)

// Intervals configures the three checks. Manual pins keep the configured
// interval in charge even when a model could predict a better one.
type Intervals struct {
	Burnout       time.Duration
	Nag           time.Duration
	Break         time.Duration
	ManualBurnout bool
	ManualBreak   bool
	MLEnabled     bool
}

type cmdKind int

const (
	cmdEnterWorking cmdKind = iota
	cmdEnterBreak
	cmdEnterProcrastinating
	cmdSessionEnded
)

type command struct {
	kind      cmdKind
	sessionID string
	category  string
}

type deadline struct {
	at           time.Time
	predictedMin float64
}

// Scheduler owns every reminder deadline for the active session. One
// goroutine waits on the earliest deadline and fully processes a firing
// (log append, prompt, response write-back, state feedback, re-arm)
// before looking at the next; state commands arrive over a channel
// serviced by the same goroutine, so nothing interleaves.
type Scheduler struct {
	clock     clock.Clock
	idGen     id.Generator
	notifier  reminderout.Notifier
	logs      reminderout.LogStore
	predictor reminderout.IntervalSource
	control   reminderout.SessionControl
	intervals Intervals

	cmds chan command
	stop chan struct{}
	done chan struct{}

	// Loop-owned state, never touched outside the run goroutine.
	sessionID  string
	category   string
	deadlines  map[domain.CheckKind]deadline
	escalation int
}

func NewScheduler(
	clk clock.Clock,
	idGen id.Generator,
	notifier reminderout.Notifier,
	logs reminderout.LogStore,
	predictor reminderout.IntervalSource,
	control reminderout.SessionControl,
	intervals Intervals,
) *Scheduler {
	return &Scheduler{
		clock:     clk,
		idGen:     idGen,
		notifier:  notifier,
		logs:      logs,
		predictor: predictor,
		control:   control,
		intervals: intervals,
		cmds:      make(chan command, 16),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		deadlines: map[domain.CheckKind]deadline{},
	}
}

// Run starts the loop; call once. Stop shuts it down and waits.
func (s *Scheduler) Run() {
	go s.loop()
}

func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Scheduler) EnterWorking(sessionID, category string) {
	s.cmds <- command{kind: cmdEnterWorking, sessionID: sessionID, category: category}
}

func (s *Scheduler) EnterBreak() {
	s.cmds <- command{kind: cmdEnterBreak}
}

func (s *Scheduler) EnterProcrastinating() {
	s.cmds <- command{kind: cmdEnterProcrastinating}
}

func (s *Scheduler) SessionEnded() {
	s.cmds <- command{kind: cmdSessionEnded}
}

func (s *Scheduler) loop() {
	defer close(s.done)
	for {
		kind, at, ok := s.earliest()
		var timerC <-chan time.Time
		var timer *time.Timer
		if ok {
			timer = time.NewTimer(at.Sub(s.clock.Now()))
			timerC = timer.C
		}
		select {
		case <-s.stop:
			if timer != nil {
				timer.Stop()
			}
			return
		case cmd := <-s.cmds:
			if timer != nil {
				timer.Stop()
			}
			s.handle(cmd)
		case <-timerC:
			s.fire(kind)
		}
	}
}

func (s *Scheduler) earliest() (domain.CheckKind, time.Time, bool) {
	var bestKind domain.CheckKind
	var bestAt time.Time
	found := false
	for kind, d := range s.deadlines {
		if !found || d.at.Before(bestAt) {
			bestKind, bestAt, found = kind, d.at, true
		}
	}
	return bestKind, bestAt, found
}

func (s *Scheduler) handle(cmd command) {
	switch cmd.kind {
	case cmdEnterWorking:
		if cmd.sessionID != "" {
			s.sessionID = cmd.sessionID
			s.category = cmd.category
		}
		s.armWorking()
	case cmdEnterBreak:
		s.armBreak()
	case cmdEnterProcrastinating:
		s.armProcrastinating()
	case cmdSessionEnded:
		s.sessionID = ""
		s.category = ""
		s.deadlines = map[domain.CheckKind]deadline{}
		s.escalation = 0
	}
}

func (s *Scheduler) armWorking() {
	s.escalation = 0
	now := s.clock.Now()
	burnout, predicted := s.burnoutInterval()
	s.deadlines = map[domain.CheckKind]deadline{
		domain.CheckBurnout: {at: now.Add(burnout), predictedMin: predicted},
	}
}

// armProcrastinating starts the nag loop. It keeps firing every Nag
// interval, each time one level more insistent, until the user reports
// being back at work or the session ends.
func (s *Scheduler) armProcrastinating() {
	s.escalation = 0
	now := s.clock.Now()
	s.deadlines = map[domain.CheckKind]deadline{
		domain.CheckProcrastination: {at: now.Add(s.intervals.Nag)},
	}
}

func (s *Scheduler) armBreak() {
	s.escalation = 0
	now := s.clock.Now()
	interval, predicted := s.breakInterval()
	s.deadlines = map[domain.CheckKind]deadline{
		domain.CheckBreakElapsed: {at: now.Add(interval), predictedMin: predicted},
	}
}

func (s *Scheduler) burnoutInterval() (time.Duration, float64) {
	if s.intervals.MLEnabled && !s.intervals.ManualBurnout {
		if d, ok := s.predictor.TimeToBurnout(context.Background(), s.category); ok {
			return d, d.Minutes()
		}
	}
	return s.intervals.Burnout, 0
}

func (s *Scheduler) breakInterval() (time.Duration, float64) {
	if s.intervals.MLEnabled && !s.intervals.ManualBreak {
		if d, ok := s.predictor.TimeToBreak(context.Background(), s.category); ok {
			return d, d.Minutes()
		}
	}
	return s.intervals.Break, 0
}

// fire processes one due check to completion.
func (s *Scheduler) fire(kind domain.CheckKind) {
	d, ok := s.deadlines[kind]
	if !ok || s.sessionID == "" {
		return
	}
	delete(s.deadlines, kind)

	ctx := context.Background()
	entry := domain.Log{
		ID:           s.idGen.New(),
		SessionID:    s.sessionID,
		Kind:         kind,
		FiredAt:      s.clock.Now(),
		PredictedMin: d.predictedMin,
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		log.Printf("reminder: append %s log: %v", kind, err)
	}

	answer, err := s.notifier.Notify(ctx, domain.Prompt{
		Kind:         kind,
		Message:      domain.Message(kind, s.escalation),
		PredictedMin: d.predictedMin,
		Escalation:   s.escalation,
	})
	if err != nil {
		// Delivery failed; keep the cadence going.
		log.Printf("reminder: notify %s: %v", kind, err)
		s.respond(ctx, entry.ID, domain.ResponseFailed)
		s.rearm(kind)
		return
	}
	s.respond(ctx, entry.ID, string(answer))

	switch kind {
	case domain.CheckBurnout:
		if err := s.control.RecordBurnout(ctx, answer == domain.AnswerYes); err != nil {
			log.Printf("reminder: record burnout: %v", err)
		}
		s.rearm(kind)
	case domain.CheckProcrastination:
		if answer == domain.AnswerYes {
			if err := s.control.EndProcrastination(ctx); err != nil {
				log.Printf("reminder: end procrastination: %v", err)
				s.rearm(kind)
				return
			}
			s.armWorking()
			return
		}
		s.escalation++
		s.rearm(kind)
	case domain.CheckBreakElapsed:
		if answer == domain.AnswerYes {
			if err := s.control.EndBreak(ctx); err != nil {
				log.Printf("reminder: end break: %v", err)
				s.rearm(kind)
				return
			}
			s.armWorking()
			return
		}
		s.rearm(kind)
	}
}

func (s *Scheduler) respond(ctx context.Context, logID, response string) {
	if err := s.logs.SetResponse(ctx, logID, response, s.clock.Now()); err != nil {
		log.Printf("reminder: record response: %v", err)
	}
}

func (s *Scheduler) rearm(kind domain.CheckKind) {
	now := s.clock.Now()
	switch kind {
	case domain.CheckBurnout:
		interval, predicted := s.burnoutInterval()
		s.deadlines[kind] = deadline{at: now.Add(interval), predictedMin: predicted}
	case domain.CheckProcrastination:
		s.deadlines[kind] = deadline{at: now.Add(s.intervals.Nag)}
	case domain.CheckBreakElapsed:
		interval, predicted := s.breakInterval()
		s.deadlines[kind] = deadline{at: now.Add(interval), predictedMin: predicted}
	}
}
