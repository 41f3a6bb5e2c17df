package create_booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
)

type fakeTimeProvider struct {
	now time.Time
}

func (p *fakeTimeProvider) Now() time.Time {
	return p.now
}

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockBookingRepo struct {
	holding     *domain.Booking
	overlapping []*domain.Booking
	created     *domain.Booking
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	created := *booking
	created.ID = 101
	created.Code = "BOOK-2026-0101"
	m.created = &created
	return &created, nil
}

func (m *mockBookingRepo) FindHoldingByVehicle(ctx context.Context, vehicleNumber string) (*domain.Booking, error) {
	if m.holding == nil {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return m.holding, nil
}

func (m *mockBookingRepo) ListOverlapping(ctx context.Context, start, end time.Time) ([]*domain.Booking, error) {
	return m.overlapping, nil
}

type mockSlotRepo struct {
	counts       domain.StateCounts
	unoccupied   []*domain.Slot
	updatedID    *int64
	updatedFlags [2]bool
}

func (m *mockSlotRepo) ListUnoccupied(ctx context.Context) ([]*domain.Slot, error) {
	return m.unoccupied, nil
}

func (m *mockSlotRepo) UpdateFlags(ctx context.Context, id int64, isOccupied, isReserved bool) error {
	m.updatedID = &id
	m.updatedFlags = [2]bool{isOccupied, isReserved}
	return nil
}

func (m *mockSlotRepo) CountByState(ctx context.Context) (*domain.StateCounts, error) {
	counts := m.counts
	return &counts, nil
}

type mockHistoryRepo struct {
	records []*domain.HistoryRecord
}

func (m *mockHistoryRepo) Append(ctx context.Context, record *domain.HistoryRecord) (*domain.HistoryRecord, error) {
	m.records = append(m.records, record)
	return record, nil
}

func newTestUseCase(bookings *mockBookingRepo, slots *mockSlotRepo, history *mockHistoryRepo, now time.Time) *UseCase {
	policy := domain.AdmissionPolicy{MaxBookablePercent: 30, MaxOccupancyPercent: 60}
	uc := NewUseCase(bookings, slots, history, nil, nil, fakeTxManager{}, policy, 15, noopLogger{})
	uc.timeProvider = &fakeTimeProvider{now: now}
	return uc
}

func TestCreateBooking_Success(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	userID := int64(7)

	bookings := &mockBookingRepo{}
	slots := &mockSlotRepo{
		counts: domain.StateCounts{Total: 26, Occupied: 3, Reserved: 1},
		unoccupied: []*domain.Slot{
			{ID: 1, SlotNumber: "1", IsReserved: true},
			{ID: 2, SlotNumber: "2"},
		},
	}
	history := &mockHistoryRepo{}
	uc := newTestUseCase(bookings, slots, history, now)

	resp, err := uc.Execute(context.Background(), &Request{
		UserID:        &userID,
		VehicleNumber: "ab 123",
	})

	require.NoError(t, err)
	assert.Equal(t, "AB123", resp.VehicleNumber)
	assert.Equal(t, "2", resp.SlotNumber)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, now, resp.StartTime)
	assert.Equal(t, now.Add(15*time.Minute), resp.EndTime)

	// Слот зарезервирован, но не занят
	require.NotNil(t, slots.updatedID)
	assert.Equal(t, int64(2), *slots.updatedID)
	assert.Equal(t, [2]bool{false, true}, slots.updatedFlags)

	require.Len(t, history.records, 1)
	assert.Equal(t, domain.ActionBooked, history.records[0].Action)
	assert.True(t, history.records[0].IsPrebooked)
}

func TestCreateBooking_OccupancyCapExceeded(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	userID := int64(7)

	bookings := &mockBookingRepo{}
	slots := &mockSlotRepo{
		// 60% of 10 slots occupied - booking disabled
		counts:     domain.StateCounts{Total: 10, Occupied: 6, Reserved: 0},
		unoccupied: []*domain.Slot{{ID: 1, SlotNumber: "1"}},
	}
	history := &mockHistoryRepo{}
	uc := newTestUseCase(bookings, slots, history, now)

	resp, err := uc.Execute(context.Background(), &Request{
		UserID:        &userID,
		VehicleNumber: "AB123",
	})

	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Nil(t, resp)

	// Отказ в допуске не должен ничего менять
	assert.Nil(t, slots.updatedID)
	assert.Nil(t, bookings.created)
	assert.Empty(t, history.records)
}

func TestCreateBooking_BookableCapExceeded(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	userID := int64(7)

	bookings := &mockBookingRepo{}
	slots := &mockSlotRepo{
		// 30% of 10 slots = 3 bookable, all reserved
		counts:     domain.StateCounts{Total: 10, Occupied: 0, Reserved: 3},
		unoccupied: []*domain.Slot{{ID: 4, SlotNumber: "4"}},
	}
	uc := newTestUseCase(bookings, slots, &mockHistoryRepo{}, now)

	_, err := uc.Execute(context.Background(), &Request{
		UserID:        &userID,
		VehicleNumber: "AB123",
	})

	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Nil(t, slots.updatedID)
}

func TestCreateBooking_VehicleAlreadyBooked(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	userID := int64(7)

	bookings := &mockBookingRepo{
		holding: &domain.Booking{ID: 55, Status: domain.StatusConfirmed, VehicleNumber: "AB123"},
	}
	slots := &mockSlotRepo{
		counts:     domain.StateCounts{Total: 26, Occupied: 0, Reserved: 1},
		unoccupied: []*domain.Slot{{ID: 1, SlotNumber: "1"}},
	}
	uc := newTestUseCase(bookings, slots, &mockHistoryRepo{}, now)

	_, err := uc.Execute(context.Background(), &Request{
		UserID:        &userID,
		VehicleNumber: "AB123",
	})

	assert.ErrorIs(t, err, ErrVehicleAlreadyBooked)
	assert.Nil(t, slots.updatedID)
}

func TestCreateBooking_NoFreeSlot(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	userID := int64(7)
	heldSlotID := int64(2)

	bookings := &mockBookingRepo{
		// Пересекающееся бронирование держит единственный свободный слот
		overlapping: []*domain.Booking{
			{ID: 9, Status: domain.StatusConfirmed, SlotID: &heldSlotID},
		},
	}
	slots := &mockSlotRepo{
		counts: domain.StateCounts{Total: 26, Occupied: 2, Reserved: 1},
		unoccupied: []*domain.Slot{
			{ID: 1, SlotNumber: "1", IsReserved: true},
			{ID: 2, SlotNumber: "2"},
		},
	}
	uc := newTestUseCase(bookings, slots, &mockHistoryRepo{}, now)

	_, err := uc.Execute(context.Background(), &Request{
		UserID:        &userID,
		VehicleNumber: "AB123",
	})

	assert.ErrorIs(t, err, ErrNoSlotAvailable)
}

func TestCreateBooking_GuestContactRequired(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(&mockBookingRepo{}, &mockSlotRepo{}, &mockHistoryRepo{}, now)

	_, err := uc.Execute(context.Background(), &Request{
		VehicleNumber: "AB123",
	})

	assert.ErrorIs(t, err, ErrGuestContactRequired)
}

func TestCreateBooking_GuestGetsGeneratedID(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	email := "guest@example.com"

	bookings := &mockBookingRepo{}
	slots := &mockSlotRepo{
		counts:     domain.StateCounts{Total: 26, Occupied: 0, Reserved: 0},
		unoccupied: []*domain.Slot{{ID: 1, SlotNumber: "1"}},
	}
	uc := newTestUseCase(bookings, slots, &mockHistoryRepo{}, now)

	resp, err := uc.Execute(context.Background(), &Request{
		GuestEmail:    &email,
		VehicleNumber: "AB123",
	})

	require.NoError(t, err)
	require.NotNil(t, resp.GuestID)
	assert.NotEmpty(t, *resp.GuestID)
	assert.Nil(t, resp.UserID)
}

func TestCreateBooking_StartTimeInPast(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	userID := int64(7)
	past := now.Add(-10 * time.Minute)

	uc := newTestUseCase(&mockBookingRepo{}, &mockSlotRepo{}, &mockHistoryRepo{}, now)

	_, err := uc.Execute(context.Background(), &Request{
		UserID:        &userID,
		VehicleNumber: "AB123",
		StartTime:     &past,
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

// lockingTxManager пропускает транзакции по одной, как сериализуемая
// изоляция: вторая видит состояние, записанное первой
type lockingTxManager struct {
	mu sync.Mutex
}

func (m *lockingTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

// slotPool разделяемое состояние пула слотов: записи видны следующей транзакции
type slotPool struct {
	slots map[int64]*domain.Slot
}

func (p *slotPool) ListUnoccupied(ctx context.Context) ([]*domain.Slot, error) {
	result := make([]*domain.Slot, 0, len(p.slots))
	for _, s := range p.slots {
		if !s.IsOccupied {
			copied := *s
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (p *slotPool) UpdateFlags(ctx context.Context, id int64, isOccupied, isReserved bool) error {
	slot := p.slots[id]
	slot.IsOccupied = isOccupied
	slot.IsReserved = isReserved
	return nil
}

func (p *slotPool) CountByState(ctx context.Context) (*domain.StateCounts, error) {
	counts := domain.StateCounts{}
	for _, s := range p.slots {
		counts.Total++
		if s.IsOccupied {
			counts.Occupied++
		} else if s.IsReserved {
			counts.Reserved++
		}
	}
	return &counts, nil
}

// bookingLedger разделяемое состояние бронирований
type bookingLedger struct {
	nextID   int64
	bookings []*domain.Booking
}

func (l *bookingLedger) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	l.nextID++
	created := *booking
	created.ID = l.nextID
	l.bookings = append(l.bookings, &created)
	return &created, nil
}

func (l *bookingLedger) FindHoldingByVehicle(ctx context.Context, vehicleNumber string) (*domain.Booking, error) {
	for _, b := range l.bookings {
		if b.VehicleNumber == vehicleNumber && b.HoldsSlot() {
			return b, nil
		}
	}
	return nil, bookingRepo.ErrBookingNotFound
}

func (l *bookingLedger) ListOverlapping(ctx context.Context, start, end time.Time) ([]*domain.Booking, error) {
	result := make([]*domain.Booking, 0, len(l.bookings))
	for _, b := range l.bookings {
		if b.HoldsSlot() {
			result = append(result, b)
		}
	}
	return result, nil
}

func TestCreateBooking_ConcurrentSingleWinnerForLastSlot(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	userA := int64(7)
	userB := int64(8)

	// Единственный свободный слот на двоих
	pool := &slotPool{slots: map[int64]*domain.Slot{
		1: {ID: 1, SlotNumber: "1"},
		2: {ID: 2, SlotNumber: "2", IsOccupied: true},
	}}
	ledger := &bookingLedger{}
	policy := domain.AdmissionPolicy{MaxBookablePercent: 100, MaxOccupancyPercent: 100}
	uc := NewUseCase(ledger, pool, &mockHistoryRepo{}, nil, nil, &lockingTxManager{}, policy, 15, noopLogger{})
	uc.timeProvider = &fakeTimeProvider{now: now}

	requests := []*Request{
		{UserID: &userA, VehicleNumber: "AA111"},
		{UserID: &userB, VehicleNumber: "BB222"},
	}
	errs := make([]error, len(requests))

	var wg sync.WaitGroup
	for i := range requests {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), requests[i])
		}(i)
	}
	wg.Wait()

	winners := 0
	losers := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrNoSlotAvailable):
			losers++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Ровно один получает слот, второй видит его резерв
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, losers)
	assert.Len(t, ledger.bookings, 1)
	assert.True(t, pool.slots[1].IsReserved)
	assert.False(t, pool.slots[1].IsOccupied)
}

type contendedTxManager struct{}

func (contendedTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fmt.Errorf("%w: serialization failure after 3 retries", txmanager.ErrContention)
}

func TestCreateBooking_ContentionSurfacedToCaller(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	userID := int64(7)

	policy := domain.AdmissionPolicy{MaxBookablePercent: 30, MaxOccupancyPercent: 60}
	uc := NewUseCase(&mockBookingRepo{}, &mockSlotRepo{}, &mockHistoryRepo{}, nil, nil, contendedTxManager{}, policy, 15, noopLogger{})
	uc.timeProvider = &fakeTimeProvider{now: now}

	_, err := uc.Execute(context.Background(), &Request{
		UserID:        &userID,
		VehicleNumber: "AB123",
	})

	assert.ErrorIs(t, err, txmanager.ErrContention)
}

func TestPickFreeSlot_Deterministic(t *testing.T) {
	slots := []*domain.Slot{
		{ID: 3, SlotNumber: "3"},
		{ID: 5, SlotNumber: "5"},
	}

	picked := pickFreeSlot(slots, nil)

	require.NotNil(t, picked)
	assert.Equal(t, int64(3), picked.ID)
}
