package dto

import "time"

type LogOutput struct {
	ID           string
	SessionID    string
	Kind         string
	FiredAt      time.Time
	PredictedMin float64
	Response     string
	RespondedAt  time.Time
}
