package sweep_bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
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
	candidates []int64
	byID       map[int64]*domain.Booking
	expiredIDs []int64
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	if b, ok := m.byID[id]; ok {
		return b, nil
	}
	return nil, errors.New("not found")
}

func (m *mockBookingRepo) ListExpiredCandidateIDs(ctx context.Context, now time.Time) ([]int64, error) {
	return m.candidates, nil
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	if status == domain.StatusExpired {
		m.expiredIDs = append(m.expiredIDs, id)
	}
	return nil
}

type mockSlotRepo struct {
	byID         map[int64]*domain.Slot
	updatedID    *int64
	updatedFlags [2]bool
}

func (m *mockSlotRepo) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	return m.byID[id], nil
}

func (m *mockSlotRepo) UpdateFlags(ctx context.Context, id int64, isOccupied, isReserved bool) error {
	m.updatedID = &id
	m.updatedFlags = [2]bool{isOccupied, isReserved}
	return nil
}

type mockHistoryRepo struct {
	records []*domain.HistoryRecord
}

func (m *mockHistoryRepo) Append(ctx context.Context, record *domain.HistoryRecord) (*domain.HistoryRecord, error) {
	m.records = append(m.records, record)
	return record, nil
}

func newTestUseCase(bookings *mockBookingRepo, slots *mockSlotRepo, history *mockHistoryRepo, now time.Time) *UseCase {
	uc := NewUseCase(bookings, slots, history, nil, fakeTxManager{}, noopLogger{})
	uc.timeProvider = &fakeTimeProvider{now: now}
	return uc
}

func TestSweepBookings_ExpiresMissedBooking(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 30, 0, 0, time.UTC)
	slotID := int64(3)

	bookings := &mockBookingRepo{
		candidates: []int64{10},
		byID: map[int64]*domain.Booking{
			10: {
				ID:            10,
				SlotID:        &slotID,
				VehicleNumber: "AB123",
				Status:        domain.StatusConfirmed,
				EndTime:       now.Add(-time.Minute),
			},
		},
	}
	slots := &mockSlotRepo{byID: map[int64]*domain.Slot{
		slotID: {ID: slotID, SlotNumber: "3", IsReserved: true},
	}}
	history := &mockHistoryRepo{}
	uc := newTestUseCase(bookings, slots, history, now)

	resp, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, resp.ExpiredCount)
	assert.Equal(t, []int64{10}, bookings.expiredIDs)

	// Снят только резерв
	require.NotNil(t, slots.updatedID)
	assert.Equal(t, [2]bool{false, false}, slots.updatedFlags)

	require.Len(t, history.records, 1)
	assert.Equal(t, domain.ActionCancelled, history.records[0].Action)
	assert.True(t, history.records[0].IsPrebooked)
}

func TestSweepBookings_SkipsBookingThatJustArrived(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 30, 0, 0, time.UTC)

	// Кандидат успел въехать между выборкой и обработкой
	bookings := &mockBookingRepo{
		candidates: []int64{10},
		byID: map[int64]*domain.Booking{
			10: {
				ID:             10,
				VehicleNumber:  "AB123",
				Status:         domain.StatusActive,
				VehicleArrived: true,
				EndTime:        now.Add(-time.Minute),
			},
		},
	}
	slots := &mockSlotRepo{byID: map[int64]*domain.Slot{}}
	history := &mockHistoryRepo{}
	uc := newTestUseCase(bookings, slots, history, now)

	resp, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, resp.ExpiredCount)
	assert.Empty(t, bookings.expiredIDs)
	assert.Empty(t, history.records)
}

func TestSweepBookings_WindowNotElapsed(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 30, 0, 0, time.UTC)

	bookings := &mockBookingRepo{
		candidates: []int64{10},
		byID: map[int64]*domain.Booking{
			10: {
				ID:            10,
				VehicleNumber: "AB123",
				Status:        domain.StatusConfirmed,
				EndTime:       now.Add(5 * time.Minute),
			},
		},
	}
	uc := newTestUseCase(bookings, &mockSlotRepo{byID: map[int64]*domain.Slot{}}, &mockHistoryRepo{}, now)

	resp, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Empty(t, bookings.expiredIDs)
	assert.Equal(t, 0, resp.ExpiredCount)
}

func TestSweepBookings_NoCandidates(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 30, 0, 0, time.UTC)

	bookings := &mockBookingRepo{}
	uc := newTestUseCase(bookings, &mockSlotRepo{}, &mockHistoryRepo{}, now)

	resp, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, resp.ExpiredCount)
}

func TestSweepBookings_ErrorOnOneBookingContinues(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 30, 0, 0, time.UTC)

	// Бронирование 10 не находится, 11 истекает штатно
	bookings := &mockBookingRepo{
		candidates: []int64{10, 11},
		byID: map[int64]*domain.Booking{
			11: {
				ID:            11,
				VehicleNumber: "CD456",
				Status:        domain.StatusConfirmed,
				EndTime:       now.Add(-time.Minute),
			},
		},
	}
	history := &mockHistoryRepo{}
	uc := newTestUseCase(bookings, &mockSlotRepo{byID: map[int64]*domain.Slot{}}, history, now)

	resp, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, resp.ExpiredCount)
	assert.Equal(t, []int64{11}, bookings.expiredIDs)
}
