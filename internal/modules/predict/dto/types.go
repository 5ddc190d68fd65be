package dto

import "time"

type PredictInput struct {
	Target   string
	Category string
}

type PredictOutput struct {
	Target      string
	Category    string
	Minutes     float64
	Tier        string
	SampleCount int
	TrainedAt   time.Time
}

type TrainOutput struct {
	Trained []ModelOutput
	Failed  []ModelOutput
}

type ModelOutput struct {
	Target      string
	Category    string
	Version     int64
	Tier        string
	SampleCount int
	TrainedAt   time.Time
	FailReason  string
}

type AdviceOutput struct {
	Category            string
	OptimalSessionMin   float64
	BreakInsertionMin   float64
	SuggestedBreakMin   float64
	NetFocusedMin       float64
	FocusBlockLengthMin float64
	Guidance            string
}

type ResearchOutput struct {
	Title           string
	Summary         string
	OptimalWorkMin  float64
	OptimalBreakMin float64
	Citation        string
	URL             string
}
