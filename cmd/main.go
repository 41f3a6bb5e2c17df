package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/create_booking"
	getAvailabilityHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_booking"
	getHistoryHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_history"
	getParkingStatusHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_parking_status"
	getSlotsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_slots"
	getTicketHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_ticket"
	getUserBookingsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_user_bookings"
	getVehicleTicketsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_vehicle_tickets"
	recordEntryHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/record_entry"
	recordExitHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/record_exit"
	sweepBookingsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/sweep_bookings"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/artifacts"
	"github.com/m04kA/SMC-ParkingService/internal/config"
	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	economicsRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/economics"
	historyRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/history"
	membershipRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/membership"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/slot"
	ticketRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/ticket"
	availabilityService "github.com/m04kA/SMC-ParkingService/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-ParkingService/internal/service/bookings"
	slotsService "github.com/m04kA/SMC-ParkingService/internal/service/slots"
	ticketsService "github.com/m04kA/SMC-ParkingService/internal/service/tickets"
	createBookingUC "github.com/m04kA/SMC-ParkingService/internal/usecase/create_booking"
	recordEntryUC "github.com/m04kA/SMC-ParkingService/internal/usecase/record_entry"
	recordExitUC "github.com/m04kA/SMC-ParkingService/internal/usecase/record_exit"
	sweepBookingsUC "github.com/m04kA/SMC-ParkingService/internal/usecase/sweep_bookings"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/logger"
	"github.com/m04kA/SMC-ParkingService/pkg/metrics"
	"github.com/m04kA/SMC-ParkingService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-ParkingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем репозитории (с метриками или без)
	var (
		slotRepository       *slotRepo.Repository
		bookingRepository    *bookingRepo.Repository
		ticketRepository     *ticketRepo.Repository
		historyRepository    *historyRepo.Repository
		membershipRepository *membershipRepo.Repository
		economicsRepository  *economicsRepo.Repository
	)

	// Интерфейс для transaction manager (используется в сервисах и usecases)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
		DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		slotRepository = slotRepo.NewRepository(wrappedDB)
		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		ticketRepository = ticketRepo.NewRepository(wrappedDB)
		historyRepository = historyRepo.NewRepository(wrappedDB)
		membershipRepository = membershipRepo.NewRepository(wrappedDB)
		economicsRepository = economicsRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		slotRepository = slotRepo.NewRepository(db)
		bookingRepository = bookingRepo.NewRepository(db)
		ticketRepository = ticketRepo.NewRepository(db)
		historyRepository = historyRepo.NewRepository(db)
		membershipRepository = membershipRepo.NewRepository(db)
		economicsRepository = economicsRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Бизнес-параметры парковки
	policy := domain.AdmissionPolicy{
		MaxBookablePercent:  cfg.Parking.MaxBookablePercent,
		MaxOccupancyPercent: cfg.Parking.MaxOccupancyPercent,
	}
	tariff := domain.Tariff{
		BaseFee:   cfg.Parking.BaseFee,
		HourlyFee: cfg.Parking.HourlyFee,
	}

	// Инициализируем сервисы
	slotSvc := slotsService.NewService(slotRepository, log)

	// Создаем пул слотов при первом старте
	if err := slotSvc.EnsurePool(context.Background(), cfg.Parking.TotalSlots); err != nil {
		log.Fatal("Failed to ensure slot pool: %v", err)
	}
	log.Info("Slot pool of %d slots is ready", cfg.Parking.TotalSlots)

	var gauge availabilityService.ParkingGauge
	if cfg.Metrics.Enabled {
		gauge = metricsCollector
	}
	availabilitySvc := availabilityService.NewService(
		slotRepository,
		policy,
		gauge,
		cfg.Metrics.ServiceName,
		log,
		time.Duration(cfg.Parking.MetricsCacheSeconds)*time.Second,
	)

	bookingSvc := bookingsService.NewService(
		bookingRepository,
		slotRepository,
		historyRepository,
		txMgr,
		log,
	)

	ticketSvc := ticketsService.NewService(
		ticketRepository,
		historyRepository,
		log,
	)

	// Генератор PDF-квитанций (если включен)
	var artifactGen createBookingUC.ArtifactGenerator
	if cfg.Artifacts.Enabled {
		artifactGen = artifacts.NewGenerator(cfg.Artifacts.Dir, log)
		log.Info("Booking slip generation enabled, dir=%s", cfg.Artifacts.Dir)
	}

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		slotRepository,
		historyRepository,
		artifactGen,
		availabilitySvc,
		txMgr,
		policy,
		cfg.Parking.GraceMinutes,
		log,
	)

	recordEntryUseCase := recordEntryUC.NewUseCase(
		bookingRepository,
		slotRepository,
		ticketRepository,
		membershipRepository,
		economicsRepository,
		historyRepository,
		availabilitySvc,
		txMgr,
		cfg.Parking.EntryFee,
		log,
	)

	recordExitUseCase := recordExitUC.NewUseCase(
		bookingRepository,
		slotRepository,
		ticketRepository,
		economicsRepository,
		historyRepository,
		availabilitySvc,
		txMgr,
		tariff,
		log,
	)

	sweepBookingsUseCase := sweepBookingsUC.NewUseCase(
		bookingRepository,
		slotRepository,
		historyRepository,
		availabilitySvc,
		txMgr,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	recordEntry := recordEntryHandler.NewHandler(recordEntryUseCase, log)
	recordExit := recordExitHandler.NewHandler(recordExitUseCase, log)
	getAvailability := getAvailabilityHandler.NewHandler(availabilitySvc, log)
	getParkingStatus := getParkingStatusHandler.NewHandler(availabilitySvc, log)
	getSlots := getSlotsHandler.NewHandler(slotSvc, log)
	getTicket := getTicketHandler.NewHandler(ticketSvc, log)
	getHistory := getHistoryHandler.NewHandler(ticketSvc, log)
	getVehicleTickets := getVehicleTicketsHandler.NewHandler(ticketSvc, log)
	sweepBookings := sweepBookingsHandler.NewHandler(sweepBookingsUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Создание бронирования (доступно и гостям, X-User-ID опционален)
	api.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Табло: допуск бронирований и снимок состояния слотов
	api.HandleFunc("/availability", getAvailability.Handle).Methods(http.MethodGet)
	api.HandleFunc("/parking/status", getParkingStatus.Handle).Methods(http.MethodGet)
	api.HandleFunc("/slots", getSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// ============================================================
	// STAFF ROUTES (X-User-ID + X-Operator-Role: staff)
	// ============================================================

	staff := api.PathPrefix("").Subrouter()
	staff.Use(middleware.Auth, middleware.Operator)

	// --- Шлагбаум: въезд и выезд ---
	staff.HandleFunc("/gate/entry", recordEntry.Handle).Methods(http.MethodPost)
	staff.HandleFunc("/gate/exit", recordExit.Handle).Methods(http.MethodPost)

	// --- Талоны и журнал ---
	staff.HandleFunc("/tickets/{ticketId}", getTicket.Handle).Methods(http.MethodGet)
	staff.HandleFunc("/history", getHistory.Handle).Methods(http.MethodGet)
	staff.HandleFunc("/vehicles/{vehicleNumber}/tickets", getVehicleTickets.Handle).Methods(http.MethodGet)

	// --- Администрирование ---
	staff.HandleFunc("/admin/bookings/sweep", sweepBookings.Handle).Methods(http.MethodPost)

	// Фоновый проход по просроченным бронированиям
	stopSweepCh := make(chan struct{})
	go func() {
		interval := time.Duration(cfg.Parking.SweepIntervalSeconds) * time.Second
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		log.Info("Booking sweep started, interval=%s", interval)

		for {
			select {
			case <-ticker.C:
				if _, err := sweepBookingsUseCase.Execute(context.Background()); err != nil {
					log.Error("Background sweep failed: %v", err)
				}
			case <-stopSweepCh:
				return
			}
		}
	}()

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем фоновый проход по бронированиям
	close(stopSweepCh)
	log.Info("Booking sweep stopped")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
