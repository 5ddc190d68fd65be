package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	exportinadapter "focusd/internal/modules/export/adapter/in"
	exportusecase "focusd/internal/modules/export/usecase"
	notifyinadapter "focusd/internal/modules/notify/adapter/in"
	notifyoutadapter "focusd/internal/modules/notify/adapter/out"
	notifyservice "focusd/internal/modules/notify/service"
	notifyusecase "focusd/internal/modules/notify/usecase"
	predictinadapter "focusd/internal/modules/predict/adapter/in"
	predictoutadapter "focusd/internal/modules/predict/adapter/out"
	predictin "focusd/internal/modules/predict/port/in"
	predictservice "focusd/internal/modules/predict/service"
	predictusecase "focusd/internal/modules/predict/usecase"
	reminderinadapter "focusd/internal/modules/reminder/adapter/in"
	reminderoutadapter "focusd/internal/modules/reminder/adapter/out"
	reminderout "focusd/internal/modules/reminder/port/out"
	reminderservice "focusd/internal/modules/reminder/service"
	reminderusecase "focusd/internal/modules/reminder/usecase"
	trackerinadapter "focusd/internal/modules/tracker/adapter/in"
	trackeroutadapter "focusd/internal/modules/tracker/adapter/out"
	"focusd/internal/modules/tracker/dto"
	trackerin "focusd/internal/modules/tracker/port/in"
	trackerservice "focusd/internal/modules/tracker/service"
	trackerusecase "focusd/internal/modules/tracker/usecase"
	"focusd/internal/platform/clock"
	"focusd/internal/platform/config"
	"focusd/internal/platform/id"
	"focusd/internal/platform/tx"
	uiapp "focusd/internal/ui/app"
)

type App struct {
	Config config.Config

	TrackerCLI  trackerinadapter.CLIHandler
	PredictCLI  predictinadapter.CLIHandler
	ReminderCLI reminderinadapter.CLIHandler
	ExportCLI   exportinadapter.CLIHandler
	NotifyCLI   notifyinadapter.CLIHandler

	db        *sql.DB
	clk       clock.Clock
	ids       id.Generator
	trackerUC trackerin.Usecase
	predictUC predictin.Usecase
	notifySvc *notifyservice.NotifyService
	logStore  reminderout.LogStore
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.RandomHex{}

	db, err := trackeroutadapter.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := trackeroutadapter.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	categories := trackeroutadapter.NewSQLiteCategoryStore(db, ids, clk)
	tasks := trackeroutadapter.NewSQLiteTaskStore(db, ids, clk)
	events := trackeroutadapter.NewSQLiteEventStore(db)
	sessions := trackeroutadapter.NewSQLiteSessionStore(db)
	trackerSvc := trackerservice.NewTrackerService(clk, ids, events, sessions, tx.NewSQLManager(db))
	trackerUC := trackerusecase.NewInteractor(
		trackerSvc,
		clk,
		categories,
		tasks,
		sessions,
		events,
		trackeroutadapter.NewFileActiveStateStore(cfg.DataDir),
		trackeroutadapter.NewMarkdownNoteStore(cfg.DataDir),
	)

	modelStore, err := predictoutadapter.NewSQLiteModelStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("new model store: %w", err)
	}
	history := predictoutadapter.NewTrackerHistoryAdapter(sessions, events, categories)
	predictSvc := predictservice.NewPredictService(clk, history, modelStore, cfg.RetrainEvery)
	if cfg.MLEnabled {
		if err := predictSvc.Restore(ctx); err != nil {
			log.Printf("predict: restore models: %v", err)
		}
	}
	predictUC := predictusecase.NewInteractor(predictSvc, history)

	logStore, err := reminderoutadapter.NewSQLiteLogStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("new reminder log store: %w", err)
	}

	notifySvc := notifyservice.NewNotifyService(
		notifyoutadapter.NewFileManifestStore(cfg.DataDir),
		notifyoutadapter.NewGRPCHost(),
	)

	return &App{
		Config:      cfg,
		TrackerCLI:  trackerinadapter.NewCLIHandler(trackerUC),
		PredictCLI:  predictinadapter.NewCLIHandler(predictUC),
		ReminderCLI: reminderinadapter.NewCLIHandler(reminderusecase.NewInteractor(logStore)),
		ExportCLI:   exportinadapter.NewCLIHandler(exportusecase.NewInteractor(trackerUC)),
		NotifyCLI:   notifyinadapter.NewCLIHandler(notifyusecase.NewInteractor(notifySvc)),
		db:          db,
		clk:         clk,
		ids:         ids,
		trackerUC:   trackerUC,
		predictUC:   predictUC,
		notifySvc:   notifySvc,
		logStore:    logStore,
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

// MaybeRetrain is called after session-changing commands; training failures
// never fail the command that triggered them.
func (a *App) MaybeRetrain(ctx context.Context) {
	if !a.Config.MLEnabled {
		return
	}
	retrained, err := a.predictUC.MaybeRetrain(ctx)
	if err != nil {
		log.Printf("predict: retrain: %v", err)
		return
	}
	if retrained {
		log.Printf("predict: models retrained")
	}
}

// trainAtStart refreshes every model when a long-lived tracking run
// begins. Training reads a history snapshot, so it can run concurrently
// with the session being tracked.
func (a *App) trainAtStart() {
	if !a.Config.MLEnabled {
		return
	}
	go func() {
		if _, err := a.predictUC.TrainAll(context.Background()); err != nil {
			log.Printf("predict: train: %v", err)
		}
	}()
}

func (a *App) newScheduler(notifier reminderout.Notifier) *reminderservice.Scheduler {
	cfg := a.Config
	return reminderservice.NewScheduler(
		a.clk,
		a.ids,
		notifier,
		a.logStore,
		reminderoutadapter.NewPredictIntervalAdapter(a.predictUC),
		reminderoutadapter.NewTrackerControlAdapter(a.trackerUC),
		reminderservice.Intervals{
			Burnout:       cfg.BurnoutInterval(),
			Nag:           cfg.ProcrastinationInterval(),
			Break:         cfg.BreakInterval(),
			ManualBurnout: cfg.Intervals.ManualBurnout,
			ManualBreak:   cfg.Intervals.ManualBreak,
			MLEnabled:     cfg.MLEnabled,
		},
	)
}

// RunTrackTUI runs the interactive tracking view. The view itself is the
// prompt surface: reminder checks render as yes/no overlays, with a
// configured plugin notifier taking precedence when one is enabled.
func (a *App) RunTrackTUI(category, task string) error {
	a.trainAtStart()
	uiNotifier := uiapp.NewNotifier()
	scheduler := a.newScheduler(notifyoutadapter.NewPluginNotifier(a.notifySvc, uiNotifier))
	scheduler.Run()
	defer scheduler.Stop()

	model := uiapp.NewModel(
		a.trackerUC,
		a.predictUC,
		scheduler,
		dto.StartInput{Category: category, Task: task},
	)
	program := tea.NewProgram(model, tea.WithAltScreen())
	uiNotifier.Attach(program)
	if _, err := program.Run(); err != nil {
		return err
	}
	a.MaybeRetrain(context.Background())
	return nil
}

// RunTrackPlain tracks without the TUI: it starts (or resumes) a session,
// answers reminder prompts on stdin, and ends the session on interrupt.
func (a *App) RunTrackPlain(ctx context.Context, category, task string) error {
	state, err := a.trackerUC.Active(ctx)
	if err != nil {
		state, err = a.trackerUC.Start(ctx, dto.StartInput{Category: category, Task: task})
		if err != nil {
			return err
		}
	}
	fmt.Printf("tracking %s (%s), ctrl+c to end\n", state.CategoryName, state.State)

	a.trainAtStart()
	scheduler := a.newScheduler(notifyoutadapter.NewPluginNotifier(
		a.notifySvc,
		notifyoutadapter.NewTerminalNotifier(os.Stdin, os.Stdout),
	))
	scheduler.Run()
	defer scheduler.Stop()
	if state.State == "working" {
		scheduler.EnterWorking(state.SessionID, state.CategoryName)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)
	select {
	case <-sig:
	case <-ctx.Done():
	}

	scheduler.SessionEnded()
	out, err := a.trackerUC.End(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("session ended: %.1f min net focused, note at %s\n",
		out.Session.NetFocusedMin, out.NotePath)
	a.MaybeRetrain(context.Background())
	return nil
}
