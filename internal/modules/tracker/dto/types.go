package dto

import "time"

type StartInput struct {
	Category string
	Task     string
}

type StateOutput struct {
	SessionID    string
	CategoryID   string
	CategoryName string
	TaskID       string
	State        string
	StartedAt    time.Time
	ElapsedMin   float64
	IntervalMin  float64
}

type SessionOutput struct {
	SessionID               string
	CategoryID              string
	CategoryName            string
	TaskID                  string
	TaskName                string
	StartedAt               time.Time
	EndedAt                 time.Time
	GrossMin                float64
	NetFocusedMin           float64
	BreakMin                float64
	ProcrastinationMin      float64
	LongestFocusBlockMin    float64
	InterruptionCount       int
	FocusRatio              float64
	BurnoutDetected         bool
	ProcrastinationDetected bool
}

type EndOutput struct {
	Session  SessionOutput
	NotePath string
}

type BurnoutResultInput struct {
	Confirmed bool
}

type ListInput struct {
	Category string
	From     time.Time
	To       time.Time
	Limit    int
}

type StatsOutput struct {
	SessionCount          int
	AvgGrossMin           float64
	AvgNetFocusedMin      float64
	AvgBreakMin           float64
	AvgProcrastinationMin float64
	AvgLongestFocusBlock  float64
	AvgInterruptions      float64
	AvgFocusRatio         float64
	AvgTimeToBreakMin     float64
	AvgTimeToProcMin      float64
	AvgTimeToBurnoutMin   float64
	TimeToBreakSamples    int
	TimeToProcSamples     int
	TimeToBurnoutSamples  int
}

type CategoryOutput struct {
	ID   string
	Name string
}

type TaskOutput struct {
	ID         string
	CategoryID string
	Name       string
}
