package sweep_bookings

// Response результат прохода по просроченным бронированиям
type Response struct {
	ExpiredCount int // Количество бронирований, переведённых в expired
}
