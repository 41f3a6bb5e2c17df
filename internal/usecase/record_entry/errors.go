package record_entry

import "errors"

var (
	// ErrInvalidVehicleNumber возвращается при некорректном номере транспорта
	ErrInvalidVehicleNumber = errors.New("record_entry: invalid vehicle number")

	// ErrAlreadyParked возвращается, когда транспорт уже на парковке
	ErrAlreadyParked = errors.New("record_entry: vehicle is already parked")

	// ErrBookingNotFound возвращается, когда указанное бронирование не найдено
	ErrBookingNotFound = errors.New("record_entry: booking not found")

	// ErrBookingNotUsable возвращается, когда бронирование нельзя использовать для въезда
	ErrBookingNotUsable = errors.New("record_entry: booking cannot be used for entry")

	// ErrNoSlotAvailable возвращается, когда нет свободного слота
	ErrNoSlotAvailable = errors.New("record_entry: no slot available")

	// ErrSlotUnavailable возвращается, когда слот бронирования уже занят
	ErrSlotUnavailable = errors.New("record_entry: booked slot is already occupied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("record_entry: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("record_entry: internal error")
)
