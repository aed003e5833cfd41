// Package api — служебный REST-интерфейс сервера: здоровье, статистика,
// Prometheus-метрики. Игровой трафик сюда не ходит.
package api

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/annel0/voxel-server/internal/logging"
	"github.com/annel0/voxel-server/internal/middleware"
)

// WorldStats отдаёт показатели мира для /stats
type WorldStats interface {
	Len() int
	ColumnCount() int
}

// ViewpointStats отдаёт число подключённых игроков
type ViewpointStats interface {
	ViewpointCount() int
}

// RestServer — HTTP-сервер служебного API
type RestServer struct {
	router     *gin.Engine
	httpServer *http.Server
	metrics    *ServerMetrics
	world      WorldStats
	viewpoints ViewpointStats
	logger     *logging.Logger
}

// NewRestServer собирает маршруты и middleware служебного API
func NewRestServer(port int, world WorldStats, viewpoints ViewpointStats, logger *logging.Logger) *RestServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	loggerMw := middleware.NewRequestLogger()
	router.Use(loggerMw.Handler())

	promMw := middleware.NewPrometheusMiddleware("rest_api")
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	rs := &RestServer{
		router:     router,
		metrics:    NewServerMetrics(),
		world:      world,
		viewpoints: viewpoints,
		logger:     logger,
	}
	rs.setupRoutes()

	rs.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return rs
}

func (rs *RestServer) setupRoutes() {
	rs.router.GET("/health", rs.handleHealth)
	rs.router.GET("/stats", rs.handleStats)
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": rs.metrics.GetUptime(),
	})
}

func (rs *RestServer) handleStats(c *gin.Context) {
	cpu, err := rs.metrics.GetCPUUsage()
	if err != nil {
		cpu = -1
	}
	c.JSON(http.StatusOK, gin.H{
		"uptime":        rs.metrics.GetUptime(),
		"memory_mb":     rs.metrics.GetMemoryUsage(),
		"cpu_percent":   cpu,
		"goroutines":    runtime.NumGoroutine(),
		"loaded_chunks": rs.world.Len(),
		"columns":       rs.world.ColumnCount(),
		"viewpoints":    rs.viewpoints.ViewpointCount(),
	})
}

// Start запускает HTTP-сервер в отдельной горутине
func (rs *RestServer) Start() {
	go func() {
		if rs.logger != nil {
			rs.logger.Info("🌐 REST API слушает %s", rs.httpServer.Addr)
		}
		if err := rs.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if rs.logger != nil {
				rs.logger.Error("REST API остановился с ошибкой: %v", err)
			}
		}
	}()
}

// Stop мягко останавливает HTTP-сервер
func (rs *RestServer) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return rs.httpServer.Shutdown(ctx)
}
