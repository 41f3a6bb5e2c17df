package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-ParkingService/internal/service/bookings/models"
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

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockBookingRepo struct {
	byID        map[int64]*domain.Booking
	byUser      []*domain.Booking
	cancelledID *int64
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	if b, ok := m.byID[id]; ok {
		return b, nil
	}
	return nil, bookingRepo.ErrBookingNotFound
}

func (m *mockBookingRepo) GetByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	return m.byUser, nil
}

func (m *mockBookingRepo) Cancel(ctx context.Context, id int64, cancelledAt time.Time) error {
	m.cancelledID = &id
	return nil
}

type mockSlotRepo struct {
	byID         map[int64]*domain.Slot
	updatedID    *int64
	updatedFlags [2]bool
}

func (m *mockSlotRepo) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	if s, ok := m.byID[id]; ok {
		return s, nil
	}
	return nil, slotRepo.ErrSlotNotFound
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

func newTestService(bookings *mockBookingRepo, slots *mockSlotRepo, history *mockHistoryRepo, now time.Time) *Service {
	svc := NewService(bookings, slots, history, fakeTxManager{}, noopLogger{})
	svc.timeProvider = &fakeTimeProvider{now: now}
	return svc
}

func TestGetByID_OwnerAccess(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	userID := int64(7)

	bookings := &mockBookingRepo{byID: map[int64]*domain.Booking{
		10: {ID: 10, UserID: &userID, VehicleNumber: "AB123", Status: domain.StatusConfirmed},
	}}
	svc := newTestService(bookings, &mockSlotRepo{}, &mockHistoryRepo{}, now)

	resp, err := svc.GetByID(context.Background(), 10, userID)

	require.NoError(t, err)
	assert.Equal(t, int64(10), resp.ID)
}

func TestGetByID_AccessDeniedForStranger(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	ownerID := int64(7)

	bookings := &mockBookingRepo{byID: map[int64]*domain.Booking{
		10: {ID: 10, UserID: &ownerID, Status: domain.StatusConfirmed},
	}}
	svc := newTestService(bookings, &mockSlotRepo{}, &mockHistoryRepo{}, now)

	_, err := svc.GetByID(context.Background(), 10, 99)

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetByID_GuestBookingAccessible(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	guestID := "guest-1"

	bookings := &mockBookingRepo{byID: map[int64]*domain.Booking{
		10: {ID: 10, GuestID: &guestID, Status: domain.StatusConfirmed},
	}}
	svc := newTestService(bookings, &mockSlotRepo{}, &mockHistoryRepo{}, now)

	resp, err := svc.GetByID(context.Background(), 10, 99)

	require.NoError(t, err)
	assert.Equal(t, int64(10), resp.ID)
}

func TestGetByID_NotFound(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&mockBookingRepo{byID: map[int64]*domain.Booking{}}, &mockSlotRepo{}, &mockHistoryRepo{}, now)

	_, err := svc.GetByID(context.Background(), 404, 7)

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancel_ReleasesReservedSlot(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	userID := int64(7)
	slotID := int64(3)

	bookings := &mockBookingRepo{byID: map[int64]*domain.Booking{
		10: {ID: 10, UserID: &userID, SlotID: &slotID, VehicleNumber: "AB123", Status: domain.StatusConfirmed},
	}}
	slots := &mockSlotRepo{byID: map[int64]*domain.Slot{
		slotID: {ID: slotID, SlotNumber: "3", IsReserved: true},
	}}
	history := &mockHistoryRepo{}
	svc := newTestService(bookings, slots, history, now)

	err := svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{UserID: userID})

	require.NoError(t, err)
	require.NotNil(t, bookings.cancelledID)
	assert.Equal(t, int64(10), *bookings.cancelledID)

	// Снят только резерв
	require.NotNil(t, slots.updatedID)
	assert.Equal(t, [2]bool{false, false}, slots.updatedFlags)

	require.Len(t, history.records, 1)
	assert.Equal(t, domain.ActionCancelled, history.records[0].Action)
}

func TestCancel_ReleasesOccupiedSlotOfActiveBooking(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	userID := int64(7)
	slotID := int64(3)

	// Транспорт уже въехал: бронирование активно, слот занят
	bookings := &mockBookingRepo{byID: map[int64]*domain.Booking{
		10: {ID: 10, UserID: &userID, SlotID: &slotID, VehicleNumber: "AB123", Status: domain.StatusActive, VehicleArrived: true},
	}}
	slots := &mockSlotRepo{byID: map[int64]*domain.Slot{
		slotID: {ID: slotID, SlotNumber: "3", IsOccupied: true},
	}}
	svc := newTestService(bookings, slots, &mockHistoryRepo{}, now)

	err := svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{UserID: userID})

	require.NoError(t, err)

	// Отмена освобождает слот безусловно: сняты оба флага
	require.NotNil(t, slots.updatedID)
	assert.Equal(t, slotID, *slots.updatedID)
	assert.Equal(t, [2]bool{false, false}, slots.updatedFlags)
}

func TestCancel_TerminalBookingRejected(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	userID := int64(7)

	bookings := &mockBookingRepo{byID: map[int64]*domain.Booking{
		10: {ID: 10, UserID: &userID, Status: domain.StatusExpired},
	}}
	svc := newTestService(bookings, &mockSlotRepo{}, &mockHistoryRepo{}, now)

	err := svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{UserID: userID})

	assert.ErrorIs(t, err, ErrCannotCancel)
	assert.Nil(t, bookings.cancelledID)
}

func TestCancel_AccessDenied(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	ownerID := int64(7)

	bookings := &mockBookingRepo{byID: map[int64]*domain.Booking{
		10: {ID: 10, UserID: &ownerID, Status: domain.StatusConfirmed},
	}}
	svc := newTestService(bookings, &mockSlotRepo{}, &mockHistoryRepo{}, now)

	err := svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{UserID: 99})

	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Nil(t, bookings.cancelledID)
}

func TestGetUserBookings_InvalidStatus(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	badStatus := "parked"

	svc := newTestService(&mockBookingRepo{}, &mockSlotRepo{}, &mockHistoryRepo{}, now)

	_, err := svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		UserID: 7,
		Status: &badStatus,
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
}
