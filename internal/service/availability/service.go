package availability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/service/availability/models"
)

// Service сервис состояния парковки с коротким кэшем агрегатов
//
// Снимок слотов дорого собирать на каждый запрос табло, поэтому агрегаты
// кэшируются на ttl. Кэш используется ТОЛЬКО для чтения: решение о допуске
// при создании бронирования перепроверяется отдельным запросом внутри
// serializable транзакции, а не по кэшу
type Service struct {
	slotRepo     SlotRepository
	policy       domain.AdmissionPolicy
	gauge        ParkingGauge
	serviceName  string
	timeProvider TimeProvider
	logger       Logger
	ttl          time.Duration

	mu        sync.Mutex
	cached    *domain.SlotMetrics
	fetchedAt time.Time
}

// NewService создает новый экземпляр сервиса состояния парковки
// gauge может быть nil, если экспорт метрик отключен
func NewService(
	slotRepo SlotRepository,
	policy domain.AdmissionPolicy,
	gauge ParkingGauge,
	serviceName string,
	logger Logger,
	ttl time.Duration,
) *Service {
	return &Service{
		slotRepo:     slotRepo,
		policy:       policy,
		gauge:        gauge,
		serviceName:  serviceName,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		ttl:          ttl,
	}
}

// GetMetrics возвращает снимок состояния слотов
// Отдаёт кэшированный снимок, пока его возраст меньше ttl
func (s *Service) GetMetrics(ctx context.Context) (*models.MetricsResponse, error) {
	metrics, err := s.snapshot(ctx, false)
	if err != nil {
		return nil, err
	}
	return models.FromDomainMetrics(metrics), nil
}

// GetAvailability возвращает решение о допуске новых бронирований
// Решение считается по кэшированному снимку и годится только для отображения
func (s *Service) GetAvailability(ctx context.Context) (*models.AvailabilityResponse, error) {
	metrics, err := s.snapshot(ctx, false)
	if err != nil {
		return nil, err
	}

	availability := s.policy.Evaluate(*metrics)
	return models.FromDomainAvailability(&availability), nil
}

// ForceRefresh сбрасывает кэш и немедленно пересобирает снимок
// Вызывается после операций, меняющих состояние слотов
func (s *Service) ForceRefresh(ctx context.Context) error {
	_, err := s.snapshot(ctx, true)
	return err
}

// snapshot возвращает актуальный снимок, пересобирая его при устаревании кэша
func (s *Service) snapshot(ctx context.Context, force bool) (*domain.SlotMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timeProvider.Now()
	if !force && s.cached != nil && now.Sub(s.fetchedAt) < s.ttl {
		return s.cached, nil
	}

	metrics, err := s.rebuild(ctx, now)
	if err != nil {
		// При ошибке пересборки отдаём устаревший снимок, если он есть
		if s.cached != nil {
			s.logger.Warn("snapshot: rebuild failed, serving stale snapshot: %v", err)
			return s.cached, nil
		}
		return nil, err
	}

	s.cached = metrics
	s.fetchedAt = now

	return metrics, nil
}

// rebuild собирает снимок из репозитория и публикует gauge-метрики
func (s *Service) rebuild(ctx context.Context, now time.Time) (*domain.SlotMetrics, error) {
	slots, err := s.slotRepo.List(ctx)
	if err != nil {
		s.logger.Error("rebuild: repository error: %v", err)
		return nil, fmt.Errorf("%w: rebuild - repository error: %v", ErrInternal, err)
	}

	metrics := &domain.SlotMetrics{
		TotalSlots: len(slots),
		Slots:      make([]domain.SlotStatusEntry, 0, len(slots)),
		UpdatedAt:  now,
	}

	for _, slot := range slots {
		status := slot.Status()
		switch status {
		case domain.SlotStatusOccupied:
			metrics.OccupiedSlots++
		case domain.SlotStatusReserved:
			metrics.ReservedSlots++
		default:
			metrics.AvailableSlots++
		}

		metrics.Slots = append(metrics.Slots, domain.SlotStatusEntry{
			SlotNumber: slot.SlotNumber,
			Status:     status,
		})
	}

	if metrics.TotalSlots > 0 {
		metrics.OccupancyPercent = float64(metrics.OccupiedSlots) / float64(metrics.TotalSlots) * 100
	}

	if s.gauge != nil {
		s.gauge.SetParkingSlots(s.serviceName, metrics.OccupiedSlots, metrics.ReservedSlots, metrics.AvailableSlots)
	}

	return metrics, nil
}
