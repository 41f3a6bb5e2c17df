package models

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// Response модели

// SlotStatusResponse строка состояния одного слота
type SlotStatusResponse struct {
	SlotNumber string `json:"slotNumber"`
	Status     string `json:"status"`
}

// MetricsResponse агрегированный снимок состояния парковки
type MetricsResponse struct {
	TotalSlots       int                  `json:"totalSlots"`
	OccupiedSlots    int                  `json:"occupiedSlots"`
	ReservedSlots    int                  `json:"reservedSlots"`
	AvailableSlots   int                  `json:"availableSlots"`
	OccupancyPercent float64              `json:"occupancyPercent"`
	Slots            []SlotStatusResponse `json:"slots"`
	UpdatedAt        string               `json:"updatedAt"` // ISO 8601
}

// AvailabilityResponse решение о допуске новых бронирований
type AvailabilityResponse struct {
	Enabled           bool    `json:"enabled"`
	Reason            *string `json:"reason,omitempty"`
	RemainingBookable int     `json:"remainingBookable"`
	TotalSlots        int     `json:"totalSlots"`
	OccupiedSlots     int     `json:"occupiedSlots"`
	ReservedSlots     int     `json:"reservedSlots"`
	AvailableSlots    int     `json:"availableSlots"`
	OccupancyPercent  float64 `json:"occupancyPercent"`
	AsOf              string  `json:"asOf"` // ISO 8601
}

// Методы конвертации

// FromDomainMetrics конвертирует domain снимок в DTO
func FromDomainMetrics(m *domain.SlotMetrics) *MetricsResponse {
	if m == nil {
		return nil
	}

	resp := &MetricsResponse{
		TotalSlots:       m.TotalSlots,
		OccupiedSlots:    m.OccupiedSlots,
		ReservedSlots:    m.ReservedSlots,
		AvailableSlots:   m.AvailableSlots,
		OccupancyPercent: m.OccupancyPercent,
		Slots:            make([]SlotStatusResponse, 0, len(m.Slots)),
		UpdatedAt:        m.UpdatedAt.Format(time.RFC3339),
	}

	for _, entry := range m.Slots {
		resp.Slots = append(resp.Slots, SlotStatusResponse{
			SlotNumber: entry.SlotNumber,
			Status:     string(entry.Status),
		})
	}

	return resp
}

// FromDomainAvailability конвертирует решение о допуске в DTO
func FromDomainAvailability(a *domain.Availability) *AvailabilityResponse {
	if a == nil {
		return nil
	}

	return &AvailabilityResponse{
		Enabled:           a.Enabled,
		Reason:            a.Reason,
		RemainingBookable: a.RemainingBookable,
		TotalSlots:        a.TotalSlots,
		OccupiedSlots:     a.OccupiedSlots,
		ReservedSlots:     a.ReservedSlots,
		AvailableSlots:    a.AvailableSlots,
		OccupancyPercent:  a.OccupancyPercent,
		AsOf:              a.AsOf.Format(time.RFC3339),
	}
}
