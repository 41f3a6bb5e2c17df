package get_vehicle_tickets

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/service/tickets"
)

const (
	msgInvalidVehicleNumber = "некорректный номер транспортного средства"
	msgInvalidLimit         = "некорректный параметр limit"
)

type Handler struct {
	service TicketService
	logger  Logger
}

func NewHandler(service TicketService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/vehicles/{vehicleNumber}/tickets?limit=50
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	vehicleNumber := vars["vehicleNumber"]

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			h.logger.Warn("GET /vehicles/{vehicleNumber}/tickets - Invalid limit: %q", limitStr)
			handlers.RespondBadRequest(w, msgInvalidLimit)
			return
		}
		limit = parsed
	}

	result, err := h.service.GetVehicleTickets(r.Context(), vehicleNumber, limit)
	if err != nil {
		switch {
		case errors.Is(err, tickets.ErrInvalidInput):
			h.logger.Warn("GET /vehicles/{vehicleNumber}/tickets - Invalid vehicle number: %q", vehicleNumber)
			handlers.RespondBadRequest(w, msgInvalidVehicleNumber)

		default:
			h.logger.Error("GET /vehicles/{vehicleNumber}/tickets - Failed to get tickets: vehicle=%s, error=%v", vehicleNumber, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
