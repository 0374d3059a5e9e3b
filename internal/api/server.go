package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"holdagent/internal/cache"
	"holdagent/internal/config"
	"holdagent/internal/external"
	"holdagent/internal/handlers"
	"holdagent/internal/logger"
	"holdagent/internal/messaging"
	"holdagent/internal/metrics"
	"holdagent/internal/middleware"
	"holdagent/internal/presenter"
	"holdagent/internal/service"
)

// Server представляет HTTP сервер агента
type Server struct {
	router    *gin.Engine
	config    *config.Config
	redis     *redis.Client
	publisher messaging.Publisher
	registry  *prometheus.Registry
	services  *service.Services
}

// NewServer создает новый экземпляр сервера
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg.Session.EventID == "" {
		return nil, fmt.Errorf("EVENT_ID is required")
	}
	if cfg.Reservation.BaseURL == "" {
		return nil, fmt.Errorf("RESERVATION_API_URL is required")
	}

	// Устанавливаем режим Gin
	gin.SetMode(cfg.GinMode)

	log := logger.WithFields("component", "api", "event_id", cfg.Session.EventID)

	// Снимки брони в Redis необязательны
	var snapshots service.SnapshotStore
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, hold snapshots disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			rdb = client
			snapshots = cache.NewHoldSnapshots(rdb, cfg.Redis.KeyPrefix, nil)
			log.Info("Hold snapshots enabled", "addr", cfg.Redis.Addr)
		}
	}

	// Подключаемся к NATS
	publisher, err := messaging.NewPublisher(cfg.NATS)
	if err != nil {
		log.Warn("NATS unavailable, lifecycle events disabled", "error", err)
		publisher = messaging.NoopPublisher{}
	}

	var registry *prometheus.Registry
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(registry)
	}

	// Клиент сервиса бронирования мест
	reservationClient := external.NewReservationClient(cfg.Reservation)

	services := service.NewServices(service.Config{
		Bridge:   cfg.Session,
		MaxSeats: cfg.MaxSeats,
		Warnings: cfg.Warnings,
	}, clockwork.NewRealClock(), reservationClient, snapshots, publisher, m)

	// Создаем роутер
	router := gin.New()

	// Применяем middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())

	server := &Server{
		router:    router,
		config:    cfg,
		redis:     rdb,
		publisher: publisher,
		registry:  registry,
		services:  services,
	}

	server.setupRoutes()

	return server, nil
}

// setupRoutes настраивает все роуты
func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, presenter.New(s.config.Warnings))

	h.Register(s.router.Group("/api"))

	s.router.GET("/health", h.Health)
	if s.registry != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	}
}

// Start восстанавливает бронь сессии и запускает движок предупреждений
func (s *Server) Start(ctx context.Context) {
	hold, err := s.services.Bridge.Rehydrate(ctx)
	switch {
	case err != nil:
		slog.Warn("Could not restore hold on startup", "error", err)
	case hold != nil:
		slog.Info("Restored hold on startup",
			"reservation_id", hold.ReservationID,
			"seats_count", hold.SeatsCount,
			"expires_at", hold.ExpiresAt)
	}

	s.services.Start(ctx)
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() http.Handler {
	return s.router
}

// Cleanup останавливает движок и закрывает соединения
func (s *Server) Cleanup() error {
	s.services.Stop()

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			slog.Error("Error closing Redis connection", "error", err)
			return err
		}
	}

	return nil
}
