package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/voxel-server/internal/api"
	"github.com/annel0/voxel-server/internal/config"
	"github.com/annel0/voxel-server/internal/eventbus"
	"github.com/annel0/voxel-server/internal/logging"
	"github.com/annel0/voxel-server/internal/metrics"
	"github.com/annel0/voxel-server/internal/network"
	"github.com/annel0/voxel-server/internal/observability"
	"github.com/annel0/voxel-server/internal/server"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (или ENV GAME_CONFIG)")
	flag.Parse()

	// Инициализируем систему логирования
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🎮 Запуск Voxel Server...")

	// === КОНФИГУРАЦИЯ ===
	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("❌ Ошибка чтения конфигурации: %v", err)
		log.Fatalf("❌ Ошибка чтения конфигурации: %v", err)
	}
	if cfg == nil {
		cfg = &config.Config{}
		logging.Info("Конфигурация не задана, используются значения по умолчанию")
	}

	kcpPort := cfg.Server.GetKCPPort()
	restPort := cfg.Server.GetRESTPort()
	metricsPort := cfg.Server.GetMetricsPort()
	logging.Info("📡 Конфигурация: KCP=%d, REST=%d, Metrics=%d, seed=%d",
		kcpPort, restPort, metricsPort, cfg.World.GetSeed())

	// === OBSERVABILITY ===
	ctx := context.Background()
	telemetryShutdown, err := observability.InitTelemetry(ctx, "voxel-server")
	if err != nil {
		logging.Warn("OpenTelemetry недоступен: %v", err)
		telemetryShutdown = func(context.Context) error { return nil }
	}

	worldMetrics := metrics.NewWorldMetrics()

	// === ШИНА СОБЫТИЙ ===
	var bus eventbus.EventBus
	var jetBus *eventbus.JetStreamBus
	if cfg.EventBus.URL != "" {
		jetBus, err = eventbus.NewJetStreamBus(cfg.EventBus.URL, cfg.EventBus.Stream, 24*time.Hour)
		if err != nil {
			logging.Error("❌ Подключение к NATS не удалось: %v", err)
			log.Fatalf("❌ Подключение к NATS не удалось: %v", err)
		}
		bus = jetBus
		logging.Info("📨 Шина событий: NATS JetStream %s", cfg.EventBus.URL)
	} else {
		bus = eventbus.NewMemoryBus(1024)
		logging.Info("📨 Шина событий: in-memory")
	}
	if err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("LoggingListener не запустился: %v", err)
	}
	busExporter := eventbus.NewMetricsExporter(bus)
	busExporter.Start()

	// === ТРАНСПОРТ И ИГРОВОЙ СЕРВЕР ===
	transport, err := network.NewKCPTransport(kcpPort, logging.GetNetworkLogger())
	if err != nil {
		logging.Error("❌ Ошибка запуска KCP транспорта: %v", err)
		log.Fatalf("❌ Ошибка запуска KCP транспорта: %v", err)
	}

	gameServer := server.New(cfg, transport, bus, worldMetrics, logging.GetWorldLogger())
	gameServer.Start()

	// === СЛУЖЕБНЫЕ HTTP ===
	restServer := api.NewRestServer(restPort, gameServer.Store(), gameServer, logging.GetLoggerManager().MustGetLogger("rest"))
	restServer.Start()

	go func() {
		addr := fmt.Sprintf(":%d", metricsPort)
		logging.Info("📈 Prometheus /metrics доступен на %s", addr)
		if err := http.ListenAndServe(addr, promhttp.Handler()); err != nil {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   🎮 Игровой трафик: KCP :%d", kcpPort)
	logging.Info("   🌐 REST API: http://localhost:%d", restPort)
	logging.Info("   ❤️  Health check: http://localhost:%d/health", restPort)

	// Ждём сигнала для завершения
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logging.Info("📡 Получен сигнал %v, завершение работы...", sig)

	// === GRACEFUL SHUTDOWN ===
	gameServer.Stop()
	if err := restServer.Stop(ctx); err != nil {
		logging.Error("Ошибка остановки REST API: %v", err)
	}
	busExporter.Stop()
	if jetBus != nil {
		jetBus.Close()
	}
	if err := telemetryShutdown(ctx); err != nil {
		logging.Error("Ошибка остановки телеметрии: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}
