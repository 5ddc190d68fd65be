package usecase

import (
	"context"

	"focusd/internal/modules/notify/dto"
	notifyin "focusd/internal/modules/notify/port/in"
	"focusd/internal/modules/notify/service"
)

type Interactor struct {
	svc *service.NotifyService
}

func NewInteractor(svc *service.NotifyService) notifyin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.NotifierInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}
