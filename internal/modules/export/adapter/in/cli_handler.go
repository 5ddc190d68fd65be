package in

import (
	"context"
	"io"

	"focusd/internal/modules/export/dto"
	exportin "focusd/internal/modules/export/port/in"
)

type CLIHandler struct {
	usecase exportin.Usecase
}

func NewCLIHandler(usecase exportin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) ExportCSV(ctx context.Context, w io.Writer, input dto.ExportInput) (int, error) {
	return h.usecase.ExportCSV(ctx, w, input)
}
