package get_history

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/service/tickets/models"
)

type HistoryService interface {
	GetHistory(ctx context.Context, req *models.GetHistoryRequest) (*models.HistoryListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
