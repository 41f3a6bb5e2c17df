package record_exit

import "errors"

var (
	// ErrInvalidVehicleNumber возвращается при некорректном номере транспорта
	ErrInvalidVehicleNumber = errors.New("record_exit: invalid vehicle number")

	// ErrNoActiveEntry возвращается, когда у транспорта нет открытого талона
	ErrNoActiveEntry = errors.New("record_exit: vehicle has no active entry")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("record_exit: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("record_exit: internal error")
)
