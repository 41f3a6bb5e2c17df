package get_ticket

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/service/tickets"
)

const (
	msgInvalidTicketID = "некорректный ID талона"
	msgNotFound        = "талон не найден"
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

// Handle GET /api/v1/tickets/{ticketId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ticketIDStr := vars["ticketId"]

	ticketID, err := strconv.ParseInt(ticketIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /tickets/{id} - Invalid ticket ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTicketID)
		return
	}

	ticket, err := h.service.GetByID(r.Context(), ticketID)
	if err != nil {
		switch {
		case errors.Is(err, tickets.ErrTicketNotFound):
			h.logger.Warn("GET /tickets/{id} - Ticket not found: ticket_id=%d", ticketID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /tickets/{id} - Failed to get ticket: ticket_id=%d, error=%v", ticketID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ticket)
}
