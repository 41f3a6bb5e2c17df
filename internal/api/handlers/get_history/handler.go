package get_history

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/service/tickets"
	"github.com/m04kA/SMC-ParkingService/internal/service/tickets/models"
)

const (
	msgInvalidFilter = "некорректные параметры фильтрации"
)

type Handler struct {
	service HistoryService
	logger  Logger
}

func NewHandler(service HistoryService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/history?vehicleNumber=AB123&action=entered&from=...&to=...&limit=50
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	req, err := parseQuery(r)
	if err != nil {
		h.logger.Warn("GET /history - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFilter)
		return
	}

	result, err := h.service.GetHistory(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, tickets.ErrInvalidInput):
			h.logger.Warn("GET /history - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidFilter)

		default:
			h.logger.Error("GET /history - Failed to get history: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// parseQuery собирает фильтр журнала из query-параметров
func parseQuery(r *http.Request) (*models.GetHistoryRequest, error) {
	query := r.URL.Query()
	req := &models.GetHistoryRequest{}

	if vehicle := query.Get("vehicleNumber"); vehicle != "" {
		req.VehicleNumber = &vehicle
	}
	if action := query.Get("action"); action != "" {
		req.Action = &action
	}
	if from := query.Get("from"); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return nil, err
		}
		req.From = &parsed
	}
	if to := query.Get("to"); to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return nil, err
		}
		req.To = &parsed
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			return nil, errors.New("invalid limit")
		}
		req.Limit = limit
	}

	return req, nil
}
