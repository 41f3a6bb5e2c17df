package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// Допустимое расхождение часов клиента и сервера при проверке startTime
const clockSkewTolerance = time.Minute

// validateRequest валидирует входные данные и возвращает нормализованный номер транспорта
func validateRequest(req *Request) (string, error) {
	if req.UserID != nil && *req.UserID <= 0 {
		return "", fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	// Гость обязан оставить контакт, иначе бронирование не с кем связать
	if req.UserID == nil {
		hasEmail := req.GuestEmail != nil && *req.GuestEmail != ""
		hasPhone := req.GuestPhone != nil && *req.GuestPhone != ""
		if !hasEmail && !hasPhone {
			return "", ErrGuestContactRequired
		}
	}

	normalized, err := domain.NormalizeVehicleNumber(req.VehicleNumber)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidVehicleNumber, err)
	}

	return normalized, nil
}

// validateStartTime проверяет, что начало брони не в прошлом
func validateStartTime(startTime, now time.Time) error {
	if startTime.Before(now.Add(-clockSkewTolerance)) {
		return fmt.Errorf("%w: startTime cannot be in the past", ErrInvalidInput)
	}
	return nil
}

// evaluateAdmission проверяет допуск нового бронирования по актуальным счётчикам
// Счётчики берутся запросом внутри транзакции, а не из кэша агрегатов
func evaluateAdmission(counts *domain.StateCounts, policy domain.AdmissionPolicy) error {
	if counts.Total == 0 {
		return ErrNoSlotAvailable
	}

	occupancyPercent := float64(counts.Occupied) / float64(counts.Total) * 100
	if occupancyPercent >= float64(policy.MaxOccupancyPercent) {
		return fmt.Errorf("%w: occupancy at %.0f%%", ErrCapacityExceeded, occupancyPercent)
	}

	if counts.Reserved >= policy.MaxBookableSlots(counts.Total) {
		return fmt.Errorf("%w: bookable slots exhausted", ErrCapacityExceeded)
	}

	return nil
}

// pickFreeSlot выбирает первый свободный слот, не занятый пересекающимися бронированиями
// Слоты сканируются в порядке возрастания ID, чтобы выбор был детерминированным
func pickFreeSlot(slots []*domain.Slot, overlapping []*domain.Booking) *domain.Slot {
	heldSlotIDs := make(map[int64]struct{}, len(overlapping))
	for _, b := range overlapping {
		if b.SlotID != nil {
			heldSlotIDs[*b.SlotID] = struct{}{}
		}
	}

	for _, slot := range slots {
		if !slot.IsAvailable() {
			continue
		}
		if _, held := heldSlotIDs[slot.ID]; held {
			continue
		}
		return slot
	}

	return nil
}
