package record_entry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	membershipRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/membership"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/slot"
	ticketRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/ticket"
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
	holding      *domain.Booking
	byID         map[int64]*domain.Booking
	getByIDCalls int
	arrivedID    *int64
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	m.getByIDCalls++
	if b, ok := m.byID[id]; ok {
		return b, nil
	}
	return nil, bookingRepo.ErrBookingNotFound
}

func (m *mockBookingRepo) FindHoldingByVehicle(ctx context.Context, vehicleNumber string) (*domain.Booking, error) {
	if m.holding == nil {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return m.holding, nil
}

func (m *mockBookingRepo) SetArrived(ctx context.Context, id int64) error {
	m.arrivedID = &id
	return nil
}

type mockSlotRepo struct {
	byID         map[int64]*domain.Slot
	firstFree    *domain.Slot
	updatedID    *int64
	updatedFlags [2]bool
}

func (m *mockSlotRepo) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	if s, ok := m.byID[id]; ok {
		return s, nil
	}
	return nil, slotRepo.ErrSlotNotFound
}

func (m *mockSlotRepo) FindFirstFree(ctx context.Context) (*domain.Slot, error) {
	if m.firstFree == nil {
		return nil, slotRepo.ErrSlotNotFound
	}
	return m.firstFree, nil
}

func (m *mockSlotRepo) UpdateFlags(ctx context.Context, id int64, isOccupied, isReserved bool) error {
	m.updatedID = &id
	m.updatedFlags = [2]bool{isOccupied, isReserved}
	return nil
}

type mockTicketRepo struct {
	open    *domain.Ticket
	created *domain.Ticket
}

func (m *mockTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	created := *ticket
	created.ID = 201
	m.created = &created
	return &created, nil
}

func (m *mockTicketRepo) GetOpenByVehicle(ctx context.Context, vehicleNumber string) (*domain.Ticket, error) {
	if m.open == nil {
		return nil, ticketRepo.ErrTicketNotFound
	}
	return m.open, nil
}

type mockMembershipRepo struct {
	member      *domain.Membership
	updatedUsed *int
}

func (m *mockMembershipRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Membership, error) {
	if m.member == nil {
		return nil, membershipRepo.ErrMembershipNotFound
	}
	return m.member, nil
}

func (m *mockMembershipRepo) UpdateFreeEntryCounters(ctx context.Context, userID int64, usedToday int, lastDate time.Time) error {
	m.updatedUsed = &usedToday
	return nil
}

type mockEconomicsRepo struct {
	records []*domain.EconomicRecord
}

func (m *mockEconomicsRepo) Create(ctx context.Context, record *domain.EconomicRecord) (*domain.EconomicRecord, error) {
	m.records = append(m.records, record)
	return record, nil
}

type mockHistoryRepo struct {
	records []*domain.HistoryRecord
}

func (m *mockHistoryRepo) Append(ctx context.Context, record *domain.HistoryRecord) (*domain.HistoryRecord, error) {
	m.records = append(m.records, record)
	return record, nil
}

type entryMocks struct {
	bookings  *mockBookingRepo
	slots     *mockSlotRepo
	tickets   *mockTicketRepo
	members   *mockMembershipRepo
	economics *mockEconomicsRepo
	history   *mockHistoryRepo
}

func newTestUseCase(m *entryMocks, now time.Time) *UseCase {
	uc := NewUseCase(m.bookings, m.slots, m.tickets, m.members, m.economics, m.history, nil, fakeTxManager{}, 30.00, noopLogger{})
	uc.timeProvider = &fakeTimeProvider{now: now}
	return uc
}

func defaultMocks() *entryMocks {
	return &entryMocks{
		bookings:  &mockBookingRepo{byID: map[int64]*domain.Booking{}},
		slots:     &mockSlotRepo{byID: map[int64]*domain.Slot{}},
		tickets:   &mockTicketRepo{},
		members:   &mockMembershipRepo{},
		economics: &mockEconomicsRepo{},
		history:   &mockHistoryRepo{},
	}
}

func TestRecordEntry_WalkInSuccess(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	operatorID := int64(500)
	m := defaultMocks()
	m.slots.firstFree = &domain.Slot{ID: 4, SlotNumber: "4"}
	uc := newTestUseCase(m, now)

	resp, err := uc.Execute(context.Background(), &Request{VehicleNumber: "ab 123", OperatorID: &operatorID})

	require.NoError(t, err)
	assert.Equal(t, int64(201), resp.TicketID)
	assert.Equal(t, "4", resp.SlotNumber)
	assert.Nil(t, resp.BookingID)
	assert.Equal(t, 30.00, resp.EntryFee)
	assert.False(t, resp.FreeEntry)

	// Слот занят, резерв снят
	require.NotNil(t, m.slots.updatedID)
	assert.Equal(t, [2]bool{true, false}, m.slots.updatedFlags)

	// Въездной сбор записан наличными
	require.Len(t, m.economics.records, 1)
	assert.Equal(t, domain.RecordEntryFee, m.economics.records[0].RecordType)
	assert.Equal(t, domain.PaymentCash, m.economics.records[0].PaymentMethod)
	assert.Equal(t, 30.00, m.economics.records[0].Amount)

	require.Len(t, m.history.records, 1)
	assert.Equal(t, domain.ActionEntered, m.history.records[0].Action)
	assert.False(t, m.history.records[0].IsPrebooked)

	// Оператор шлагбаума зафиксирован в журнале
	require.NotNil(t, m.history.records[0].OperatorID)
	assert.Equal(t, operatorID, *m.history.records[0].OperatorID)
}

func TestRecordEntry_AlreadyParked(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	m := defaultMocks()
	m.tickets.open = &domain.Ticket{ID: 7, VehicleNumber: "AB123"}
	uc := newTestUseCase(m, now)

	_, err := uc.Execute(context.Background(), &Request{VehicleNumber: "AB123"})

	assert.ErrorIs(t, err, ErrAlreadyParked)
	assert.Nil(t, m.slots.updatedID)
	assert.Nil(t, m.tickets.created)
}

func TestRecordEntry_VehicleBookingWinsOverExplicitID(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	slotID := int64(3)
	explicitID := int64(99)

	m := defaultMocks()
	m.bookings.holding = &domain.Booking{ID: 10, Status: domain.StatusConfirmed, SlotID: &slotID, VehicleNumber: "AB123"}
	m.slots.byID[slotID] = &domain.Slot{ID: slotID, SlotNumber: "3", IsReserved: true}
	uc := newTestUseCase(m, now)

	resp, err := uc.Execute(context.Background(), &Request{
		VehicleNumber: "AB123",
		BookingID:     &explicitID,
	})

	require.NoError(t, err)
	require.NotNil(t, resp.BookingID)
	assert.Equal(t, int64(10), *resp.BookingID)
	// Явно указанный ID не запрашивался: бронирование по номеру транспорта приоритетнее
	assert.Equal(t, 0, m.bookings.getByIDCalls)

	require.NotNil(t, m.bookings.arrivedID)
	assert.Equal(t, int64(10), *m.bookings.arrivedID)
	assert.Equal(t, int64(3), *m.slots.updatedID)
	assert.Equal(t, [2]bool{true, false}, m.slots.updatedFlags)
	assert.True(t, m.history.records[0].IsPrebooked)
}

func TestRecordEntry_BookedSlotOccupiedFails(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	slotID := int64(3)

	// Слот бронирования занят, свободный слот есть, но пересадка запрещена
	m := defaultMocks()
	m.bookings.holding = &domain.Booking{ID: 10, Status: domain.StatusConfirmed, SlotID: &slotID, VehicleNumber: "AB123"}
	m.slots.byID[slotID] = &domain.Slot{ID: slotID, SlotNumber: "3", IsOccupied: true}
	m.slots.firstFree = &domain.Slot{ID: 8, SlotNumber: "8"}
	uc := newTestUseCase(m, now)

	_, err := uc.Execute(context.Background(), &Request{VehicleNumber: "AB123"})

	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Nil(t, m.slots.updatedID)
	assert.Nil(t, m.tickets.created)
	assert.Empty(t, m.history.records)
}

func TestRecordEntry_ExplicitBookingSlotOccupiedFails(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	slotID := int64(3)
	explicitID := int64(10)

	m := defaultMocks()
	m.bookings.byID[explicitID] = &domain.Booking{ID: explicitID, Status: domain.StatusConfirmed, SlotID: &slotID, VehicleNumber: "CD456"}
	m.slots.byID[slotID] = &domain.Slot{ID: slotID, SlotNumber: "3", IsOccupied: true}
	m.slots.firstFree = &domain.Slot{ID: 8, SlotNumber: "8"}
	uc := newTestUseCase(m, now)

	_, err := uc.Execute(context.Background(), &Request{
		VehicleNumber: "CD456",
		BookingID:     &explicitID,
	})

	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Nil(t, m.slots.updatedID)
}

func TestRecordEntry_BookedSlotDeletedFallsBackToFree(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	slotID := int64(3)

	// Слот бронирования удалён из пула - транспорт сажаем на свободный
	m := defaultMocks()
	m.bookings.holding = &domain.Booking{ID: 10, Status: domain.StatusConfirmed, SlotID: &slotID, VehicleNumber: "AB123"}
	m.slots.firstFree = &domain.Slot{ID: 8, SlotNumber: "8"}
	uc := newTestUseCase(m, now)

	resp, err := uc.Execute(context.Background(), &Request{VehicleNumber: "AB123"})

	require.NoError(t, err)
	assert.Equal(t, "8", resp.SlotNumber)
}

func TestRecordEntry_ExplicitBookingNotUsable(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	explicitID := int64(99)

	m := defaultMocks()
	m.bookings.byID[explicitID] = &domain.Booking{ID: explicitID, Status: domain.StatusExpired}
	uc := newTestUseCase(m, now)

	_, err := uc.Execute(context.Background(), &Request{
		VehicleNumber: "AB123",
		BookingID:     &explicitID,
	})

	assert.ErrorIs(t, err, ErrBookingNotUsable)
}

func TestRecordEntry_ExplicitBookingNotFound(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	explicitID := int64(404)

	m := defaultMocks()
	uc := newTestUseCase(m, now)

	_, err := uc.Execute(context.Background(), &Request{
		VehicleNumber: "AB123",
		BookingID:     &explicitID,
	})

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestRecordEntry_NoSlotAvailable(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	m := defaultMocks()
	uc := newTestUseCase(m, now)

	_, err := uc.Execute(context.Background(), &Request{VehicleNumber: "AB123"})

	assert.ErrorIs(t, err, ErrNoSlotAvailable)
}

func TestRecordEntry_MemberFreeEntry(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	userID := int64(7)
	periodEnd := now.AddDate(0, 1, 0)

	m := defaultMocks()
	m.slots.firstFree = &domain.Slot{ID: 4, SlotNumber: "4"}
	m.members.member = &domain.Membership{
		UserID:           userID,
		Status:           domain.MembershipActive,
		CurrentPeriodEnd: &periodEnd,
	}
	uc := newTestUseCase(m, now)

	resp, err := uc.Execute(context.Background(), &Request{
		VehicleNumber: "AB123",
		UserID:        &userID,
	})

	require.NoError(t, err)
	assert.True(t, resp.FreeEntry)
	assert.Equal(t, 0.00, resp.EntryFee)

	require.NotNil(t, m.members.updatedUsed)
	assert.Equal(t, 1, *m.members.updatedUsed)

	require.Len(t, m.economics.records, 1)
	assert.Equal(t, domain.RecordFreeEntry, m.economics.records[0].RecordType)
	assert.Equal(t, domain.PaymentFree, m.economics.records[0].PaymentMethod)
	assert.Equal(t, 0.00, m.economics.records[0].Amount)
}

func TestRecordEntry_MemberBenefitExhaustedToday(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	userID := int64(7)
	periodEnd := now.AddDate(0, 1, 0)
	today := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	m := defaultMocks()
	m.slots.firstFree = &domain.Slot{ID: 4, SlotNumber: "4"}
	m.members.member = &domain.Membership{
		UserID:               userID,
		Status:               domain.MembershipActive,
		CurrentPeriodEnd:     &periodEnd,
		FreeEntriesUsedToday: 1,
		LastFreeEntryDate:    &today,
	}
	uc := newTestUseCase(m, now)

	resp, err := uc.Execute(context.Background(), &Request{
		VehicleNumber: "AB123",
		UserID:        &userID,
	})

	require.NoError(t, err)
	assert.False(t, resp.FreeEntry)
	assert.Equal(t, 30.00, resp.EntryFee)

	require.Len(t, m.economics.records, 1)
	assert.Equal(t, domain.RecordEntryFee, m.economics.records[0].RecordType)
}

func TestRecordEntry_InvalidVehicleNumber(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	uc := newTestUseCase(defaultMocks(), now)

	_, err := uc.Execute(context.Background(), &Request{VehicleNumber: "!!"})

	assert.ErrorIs(t, err, ErrInvalidVehicleNumber)
}
