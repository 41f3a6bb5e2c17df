package tickets

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	ticketRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/ticket"
	"github.com/m04kA/SMC-ParkingService/internal/service/tickets/models"
)

const defaultHistoryLimit = 100

// Service сервис для работы с парковочными талонами и журналом событий
type Service struct {
	ticketRepo  TicketRepository
	historyRepo HistoryRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса талонов
func NewService(ticketRepo TicketRepository, historyRepo HistoryRepository, logger Logger) *Service {
	return &Service{
		ticketRepo:  ticketRepo,
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// GetByID получает талон по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.TicketResponse, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ticketRepo.ErrTicketNotFound) {
			s.logger.Warn("GetByID: ticket id=%d not found", id)
			return nil, ErrTicketNotFound
		}
		s.logger.Error("GetByID: repository error for ticket id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainTicket(ticket), nil
}

// GetVehicleTickets получает талоны по номеру транспортного средства
func (s *Service) GetVehicleTickets(ctx context.Context, vehicleNumber string, limit int) (*models.TicketListResponse, error) {
	normalized, err := domain.NormalizeVehicleNumber(vehicleNumber)
	if err != nil {
		s.logger.Warn("GetVehicleTickets: invalid vehicle number=%q", vehicleNumber)
		return nil, fmt.Errorf("%w: invalid vehicle number", ErrInvalidInput)
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	tickets, err := s.ticketRepo.ListByVehicle(ctx, normalized, uint64(limit))
	if err != nil {
		s.logger.Error("GetVehicleTickets: repository error for vehicle=%s: %v", normalized, err)
		return nil, fmt.Errorf("%w: GetVehicleTickets - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainTicketList(tickets), nil
}

// GetHistory получает журнал событий парковки с фильтрацией
func (s *Service) GetHistory(ctx context.Context, req *models.GetHistoryRequest) (*models.HistoryListResponse, error) {
	// Нормализуем номер транспорта в фильтре, чтобы поиск был регистронезависимым
	if req.VehicleNumber != nil {
		normalized, err := domain.NormalizeVehicleNumber(*req.VehicleNumber)
		if err != nil {
			s.logger.Warn("GetHistory: invalid vehicle number=%q", *req.VehicleNumber)
			return nil, fmt.Errorf("%w: invalid vehicle number", ErrInvalidInput)
		}
		req.VehicleNumber = &normalized
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetHistory: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	records, err := s.historyRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetHistory: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetHistory - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetHistory: fetched %d records", len(records))
	return models.FromDomainHistoryList(records), nil
}
