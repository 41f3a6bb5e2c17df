package get_parking_status

import (
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
)

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/parking/status
// Отдает снимок табло: агрегаты и построчные статусы слотов
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetMetrics(r.Context())
	if err != nil {
		h.logger.Error("GET /parking/status - Failed to get parking status: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
