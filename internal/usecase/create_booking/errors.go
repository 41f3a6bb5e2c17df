package create_booking

import "errors"

var (
	// ErrInvalidVehicleNumber возвращается при некорректном номере транспорта
	ErrInvalidVehicleNumber = errors.New("create_booking: invalid vehicle number")

	// ErrGuestContactRequired возвращается, когда гость не указал контакт
	ErrGuestContactRequired = errors.New("create_booking: guest email or phone is required")

	// ErrVehicleAlreadyBooked возвращается, когда на транспорт уже есть активное бронирование
	ErrVehicleAlreadyBooked = errors.New("create_booking: vehicle already has an active booking")

	// ErrCapacityExceeded возвращается, когда допуск новых бронирований закрыт
	ErrCapacityExceeded = errors.New("create_booking: booking capacity exceeded")

	// ErrNoSlotAvailable возвращается, когда нет свободного слота
	ErrNoSlotAvailable = errors.New("create_booking: no slot available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
