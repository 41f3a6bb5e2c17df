package sweep_bookings

import (
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
)

type Handler struct {
	useCase SweepBookingsUseCase
	logger  Logger
}

func NewHandler(useCase SweepBookingsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// SweepResponse HTTP response model
type SweepResponse struct {
	ExpiredCount int `json:"expiredCount"`
}

// Handle POST /api/v1/admin/bookings/sweep
// Ручной запуск прохода по просроченным бронированиям
// Тот же use case запускается фоновым тикером
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.useCase.Execute(r.Context())
	if err != nil {
		h.logger.Error("POST /admin/bookings/sweep - Sweep failed: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /admin/bookings/sweep - Expired %d bookings", result.ExpiredCount)
	handlers.RespondJSON(w, http.StatusOK, SweepResponse{ExpiredCount: result.ExpiredCount})
}
