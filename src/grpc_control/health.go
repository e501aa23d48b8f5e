package grpc_control

import (
	"fmt"
	"net"
	"sync"

	"stock-watchlist/src/interfaces"
	"stock-watchlist/src/logger"
	"stock-watchlist/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health-checked service
const ServiceName = "watchlist"

// HealthReporter publishes the watchlist engine state over the standard gRPC
// health protocol so orchestrators can probe the backend.
type HealthReporter struct {
	Engine interfaces.IWatchlistEngine
	Logger *logger.Logger

	mu     sync.Mutex
	health *health.Server
	server *grpc.Server
	last   healthpb.HealthCheckResponse_ServingStatus
}

// -----------------------------------------------------------------------------

func NewHealthReporter(engine interfaces.IWatchlistEngine, log *logger.Logger) *HealthReporter {
	h := &HealthReporter{
		Engine: engine,
		Logger: log,
		health: health.NewServer(),
		last:   healthpb.HealthCheckResponse_UNKNOWN,
	}
	h.Update()
	return h
}

// -----------------------------------------------------------------------------

func statusFor(state models.EngineState) healthpb.HealthCheckResponse_ServingStatus {
	if state == models.StateError {
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}

// -----------------------------------------------------------------------------

// Update re-reads the engine state. Meant to be passed to Engine.Subscribe.
func (h *HealthReporter) Update() {
	status := statusFor(h.Engine.State())

	h.mu.Lock()
	defer h.mu.Unlock()
	h.health.SetServingStatus(ServiceName, status)
	h.health.SetServingStatus("", status)

	if status != h.last {
		h.Logger.Info("Health status changed: %s -> %s", h.last, status)
		h.last = status
	}
}

// -----------------------------------------------------------------------------

// Register attaches the health service to an existing gRPC server
func (h *HealthReporter) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
}

// -----------------------------------------------------------------------------

// Serve listens on host:port until Stop is called
func (h *HealthReporter) Serve(host string, port int) error {
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	server := grpc.NewServer()
	h.Register(server)

	h.mu.Lock()
	h.server = server
	h.mu.Unlock()

	h.Logger.Info("gRPC health service listening on %s", lis.Addr())
	return server.Serve(lis)
}

// -----------------------------------------------------------------------------

func (h *HealthReporter) Stop() {
	h.mu.Lock()
	server := h.server
	h.mu.Unlock()

	h.health.Shutdown()
	if server != nil {
		server.GracefulStop()
	}
}
