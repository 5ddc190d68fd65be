package in

import (
	"context"
	"io"

	"focusd/internal/modules/export/dto"
)

type Usecase interface {
	// ExportCSV writes flattened finalized sessions and returns the row
	// count, header excluded.
	ExportCSV(ctx context.Context, w io.Writer, input dto.ExportInput) (int, error)
}
