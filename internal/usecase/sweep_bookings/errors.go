package sweep_bookings

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("sweep_bookings: internal error")
)
