package dto

import "time"

type ExportInput struct {
	Category string
	From     time.Time
	To       time.Time
}
