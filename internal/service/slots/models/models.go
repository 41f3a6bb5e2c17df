package models

import (
	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// Response модели

// SlotResponse ответ с данными слота
type SlotResponse struct {
	ID         int64  `json:"id"`
	SlotNumber string `json:"slotNumber"`
	Status     string `json:"status"`
}

// SlotListResponse ответ со списком слотов
type SlotListResponse struct {
	Slots []SlotResponse `json:"slots"`
}

// Методы конвертации

// FromDomainSlot конвертирует domain модель в DTO
func FromDomainSlot(s *domain.Slot) *SlotResponse {
	if s == nil {
		return nil
	}

	return &SlotResponse{
		ID:         s.ID,
		SlotNumber: s.SlotNumber,
		Status:     string(s.Status()),
	}
}

// FromDomainSlotList конвертирует список domain моделей в DTO
func FromDomainSlotList(slots []*domain.Slot) *SlotListResponse {
	resp := &SlotListResponse{
		Slots: make([]SlotResponse, 0, len(slots)),
	}

	for _, s := range slots {
		resp.Slots = append(resp.Slots, *FromDomainSlot(s))
	}

	return resp
}
