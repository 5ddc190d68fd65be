package in

import (
	"context"

	"focusd/internal/modules/notify/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.NotifierInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
}
