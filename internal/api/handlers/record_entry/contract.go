package record_entry

import (
	"context"

	recordEntry "github.com/m04kA/SMC-ParkingService/internal/usecase/record_entry"
)

type RecordEntryUseCase interface {
	Execute(ctx context.Context, req *recordEntry.Request) (*recordEntry.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
