// Package server собирает подсистемы мира в игровой сервер с фиксированным
// тиком: транспорт, хранилище чанков, фоновые воркеры и планировщик
// стриминга.
package server

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/annel0/voxel-server/internal/config"
	"github.com/annel0/voxel-server/internal/eventbus"
	"github.com/annel0/voxel-server/internal/light"
	"github.com/annel0/voxel-server/internal/logging"
	"github.com/annel0/voxel-server/internal/metrics"
	"github.com/annel0/voxel-server/internal/network"
	"github.com/annel0/voxel-server/internal/streaming"
	"github.com/annel0/voxel-server/internal/world"
)

// GameServer владеет жизненным циклом мира и крутит серверный тик.
// Вся логика мира выполняется в одной горутине тика; воркеры и транспорт
// общаются с ней только через каналы и неблокирующий опрос.
type GameServer struct {
	logger    *logging.Logger
	store     *world.ChunkStore
	genWorker *streaming.GenWorker
	lightWork *light.Worker
	scheduler *streaming.Scheduler
	transport network.Transport
	metrics   *metrics.WorldMetrics

	tickInterval time.Duration
	quit         chan struct{}
	done         chan struct{}
}

// New собирает игровой сервер. bus и m могут быть nil —
// сервер работает без шины событий и без метрик.
func New(
	cfg *config.Config,
	transport network.Transport,
	bus eventbus.EventBus,
	m *metrics.WorldMetrics,
	logger *logging.Logger,
) *GameServer {
	if cfg == nil {
		cfg = &config.Config{}
	}

	store := world.NewChunkStore(logger)
	gen := world.NewPerlinGenerator(cfg.World.GetSeed())
	genWorker := streaming.NewGenWorker(gen, cfg.Workers.GetWorldgenQueue(), logger)
	lightWork := light.NewWorker(cfg.Workers.GetLightingQueue(), logger)

	scheduler := streaming.NewScheduler(store, genWorker, lightWork, transport, bus, m,
		streaming.Options{
			ChunksPerTick:   cfg.Streaming.GetChunksPerTick(),
			LightingPerTick: cfg.Streaming.GetLightingPerTick(),
		}, logger)

	return &GameServer{
		logger:       logger,
		store:        store,
		genWorker:    genWorker,
		lightWork:    lightWork,
		scheduler:    scheduler,
		transport:    transport,
		metrics:      m,
		tickInterval: cfg.Streaming.GetTickInterval(),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Store возвращает хранилище чанков (для REST-статистики)
func (gs *GameServer) Store() *world.ChunkStore { return gs.store }

// ViewpointCount возвращает число подключённых игроков
func (gs *GameServer) ViewpointCount() int { return gs.scheduler.ViewpointCount() }

// Start запускает цикл тиков в отдельной горутине
func (gs *GameServer) Start() {
	go gs.run()
	if gs.logger != nil {
		gs.logger.Info("🎮 Игровой цикл запущен, тик %v", gs.tickInterval)
	}
}

func (gs *GameServer) run() {
	defer close(gs.done)
	ticker := time.NewTicker(gs.tickInterval)
	defer ticker.Stop()

	tracer := otel.Tracer("voxel-server")
	for {
		select {
		case <-gs.quit:
			return
		case <-ticker.C:
			start := time.Now()
			ctx, span := tracer.Start(context.Background(), "server.tick")
			gs.scheduler.Tick(ctx)
			span.End()
			if gs.metrics != nil {
				gs.metrics.TickDuration.Observe(time.Since(start).Seconds())
			}
		}
	}
}

// Stop останавливает тики, воркеры и транспорт
func (gs *GameServer) Stop() {
	close(gs.quit)
	<-gs.done
	gs.genWorker.Stop()
	gs.lightWork.Stop()
	_ = gs.transport.Close()
	if gs.logger != nil {
		gs.logger.Info("Игровой сервер остановлен")
	}
}
