package streaming

import (
	"context"

	"github.com/annel0/voxel-server/internal/eventbus"
	"github.com/annel0/voxel-server/internal/light"
	"github.com/annel0/voxel-server/internal/logging"
	"github.com/annel0/voxel-server/internal/metrics"
	"github.com/annel0/voxel-server/internal/network"
	"github.com/annel0/voxel-server/internal/protocol"
	"github.com/annel0/voxel-server/internal/vec"
	"github.com/annel0/voxel-server/internal/worker"
	"github.com/annel0/voxel-server/internal/world"
	"github.com/annel0/voxel-server/internal/world/block"
)

// GenWorker — фоновый воркер генерации чанков
type GenWorker = worker.Worker[struct{}, *world.Chunk]

// NewGenWorker создаёт воркер генерации поверх произвольного генератора
func NewGenWorker(gen world.ChunkGenerator, capacity int, logger *logging.Logger) *GenWorker {
	return worker.New("worldgen", capacity, func(pos vec.Vec3, _ struct{}) *world.Chunk {
		return gen.GenerateChunk(pos)
	}, logger)
}

// Options — настройки планировщика стриминга
type Options struct {
	// ChunksPerTick ограничивает доставки чанков одному игроку за тик
	ChunksPerTick int
	// LightingPerTick ограничивает постановки пересчётов света за тик
	LightingPerTick int
}

// Scheduler ведёт точки обзора игроков и каждый тик решает, что
// генерировать, пересчитывать, доставлять и выгружать. Работает строго
// в одной горутине серверного тика.
type Scheduler struct {
	store       *world.ChunkStore
	genWorker   *GenWorker
	lightWorker *light.Worker
	transport   network.Transport
	bus         eventbus.EventBus
	metrics     *metrics.WorldMetrics
	logger      *logging.Logger

	viewpoints map[network.ClientID]*Viewpoint
	opts       Options
}

// NewScheduler создаёт планировщик. bus и m могут быть nil.
func NewScheduler(
	store *world.ChunkStore,
	genWorker *GenWorker,
	lightWorker *light.Worker,
	transport network.Transport,
	bus eventbus.EventBus,
	m *metrics.WorldMetrics,
	opts Options,
	logger *logging.Logger,
) *Scheduler {
	if opts.ChunksPerTick <= 0 {
		opts.ChunksPerTick = 20
	}
	if opts.LightingPerTick <= 0 {
		opts.LightingPerTick = 20
	}
	return &Scheduler{
		store:       store,
		genWorker:   genWorker,
		lightWorker: lightWorker,
		transport:   transport,
		bus:         bus,
		metrics:     m,
		logger:      logger,
		viewpoints:  make(map[network.ClientID]*Viewpoint),
		opts:        opts,
	}
}

// ViewpointCount возвращает количество подключённых точек обзора
func (s *Scheduler) ViewpointCount() int {
	return len(s.viewpoints)
}

// Tick выполняет один шаг стриминга:
// события сети, результаты воркеров, доставка, свет, выгрузка
func (s *Scheduler) Tick(ctx context.Context) {
	s.drainNetwork(ctx)
	s.updateWorkerPriorities()
	s.drainWorkers(ctx)
	s.deliverChunks()
	s.requestLighting()
	s.evict(ctx)
	s.updateMetrics()
}

// drainNetwork обрабатывает накопившиеся сетевые события
func (s *Scheduler) drainNetwork(ctx context.Context) {
	for {
		ev := s.transport.ReceiveEvent()
		switch ev.Kind {
		case network.EventNone:
			return

		case network.EventConnected:
			vp := NewViewpoint(ev.Client)
			s.viewpoints[ev.Client] = vp
			// Статические данные уходят до любых чанков
			s.transport.Send(ev.Client, &protocol.GameData{Blocks: block.All()})
			s.publish(ctx, eventbus.NewViewpointEvent(eventbus.EventViewpointConnected, string(ev.Client)))
			if s.logger != nil {
				s.logger.Info("Точка обзора %s подключена", ev.Client)
			}

		case network.EventDisconnected:
			delete(s.viewpoints, ev.Client)
			s.publish(ctx, eventbus.NewViewpointEvent(eventbus.EventViewpointDisconnected, string(ev.Client)))
			if s.logger != nil {
				s.logger.Info("Точка обзора %s отключена", ev.Client)
			}

		case network.EventMessage:
			s.handleMessage(ev.Client, ev.Message)
		}
	}
}

func (s *Scheduler) handleMessage(id network.ClientID, msg protocol.Message) {
	vp, exists := s.viewpoints[id]
	if !exists {
		return
	}
	switch m := msg.(type) {
	case *protocol.SetPos:
		vp.SetPosition(m.Pos)
	case *protocol.SetRenderDistance:
		vp.SetRenderDistance(m.RenderDistance)
	default:
		if s.logger != nil {
			s.logger.Warn("Неожиданное сообщение типа %d от %s", msg.Type(), id)
		}
	}
}

// drainWorkers забирает готовые чанки и свет без блокировки
func (s *Scheduler) drainWorkers(ctx context.Context) {
	for _, c := range s.genWorker.PollResults() {
		s.store.SetChunk(c)
		if s.metrics != nil {
			s.metrics.ChunksGenerated.Inc()
		}
		if rec, ok := s.store.Record(c.Pos); ok {
			s.publish(ctx, eventbus.NewChunkEvent(eventbus.EventChunkLoaded, c.Pos, rec.Version))
		}
	}
	for _, lc := range s.lightWorker.PollResults() {
		if s.store.ApplyLightResult(lc) && s.metrics != nil {
			s.metrics.LightRecomputes.Inc()
		}
	}
}

// deliverChunks отправляет каждому игроку изменившиеся чанки зоны
// видимости, от ближних к дальним, и заказывает генерацию недостающих
func (s *Scheduler) deliverChunks() {
	for _, vp := range s.viewpoints {
		sent := 0
		for _, off := range vp.closeOffsets {
			pos := vp.Chunk.Add(off)
			rec, loaded := s.store.Record(pos)
			if !loaded {
				s.requestGeneration(pos)
				continue
			}
			if !vp.NeedsDelivery(pos, rec.Version) {
				continue
			}
			if sent >= s.opts.ChunksPerTick {
				continue
			}
			s.transport.Send(vp.ID, &protocol.ChunkUpdate{
				Pos:     pos,
				Version: rec.Version,
				Blocks:  rec.Chunk.Blocks,
				Light:   rec.Light.Light,
			})
			vp.MarkDelivered(pos, rec.Version)
			sent++
			if s.metrics != nil {
				s.metrics.ChunksDelivered.Inc()
			}
		}
	}
}

// requestGeneration ставит незагруженный чанк в очередь генерации.
// Заполненная очередь — не ошибка: позиция подождёт следующего тика.
func (s *Scheduler) requestGeneration(pos vec.Vec3) {
	if s.store.GenQueued(pos) {
		return
	}
	if err := s.genWorker.Enqueue(pos, struct{}{}); err != nil {
		return
	}
	s.store.MarkGenQueued(pos)
}

// requestLighting ставит в очередь пересчёты света для чанков зон
// видимости, от ближних к дальним, в пределах лимита за тик
func (s *Scheduler) requestLighting() {
	remaining := s.opts.LightingPerTick
	for _, vp := range s.viewpoints {
		if remaining <= 0 {
			return
		}
		candidates := make([]vec.Vec3, 0, len(vp.closeOffsets))
		for _, off := range vp.closeOffsets {
			candidates = append(candidates, vp.Chunk.Add(off))
		}
		remaining -= light.EnqueueChunks(s.store, s.lightWorker, candidates, remaining, s.logger)
	}
}

// updateWorkerPriorities сообщает воркерам свежие позиции игроков:
// ближние к игрокам задачи выполняются первыми
func (s *Scheduler) updateWorkerPriorities() {
	centers := make([]vec.Vec3, 0, len(s.viewpoints))
	for _, vp := range s.viewpoints {
		centers = append(centers, vp.Chunk)
	}
	s.genWorker.UpdateViewpoints(centers)
	s.lightWorker.UpdateViewpoints(centers)
}

// evict выгружает чанки вне всех зон видимости и отменяет ненужные
// фоновые задачи
func (s *Scheduler) evict(ctx context.Context) {
	for _, pos := range s.store.LoadedPositions() {
		if s.visibleToAnyone(pos) {
			continue
		}
		s.store.Unload(pos)
		s.lightWorker.Dequeue(pos)
		s.publish(ctx, eventbus.NewChunkEvent(eventbus.EventChunkUnloaded, pos, 0))
	}

	// Генерацию чанков, которые никому не нужны, отменяем до старта
	for _, pos := range s.genWorker.PendingPositions() {
		if !s.visibleToAnyone(pos) {
			s.genWorker.Dequeue(pos)
			s.store.ClearGenQueued(pos)
		}
	}

	for _, vp := range s.viewpoints {
		vp.PruneDelivered()
	}
}

func (s *Scheduler) visibleToAnyone(pos vec.Vec3) bool {
	for _, vp := range s.viewpoints {
		if vp.RenderDistance.IsChunkVisible(vp.Chunk, pos) {
			return true
		}
	}
	return false
}

func (s *Scheduler) publish(ctx context.Context, ev *eventbus.Envelope) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, ev); err != nil && s.logger != nil {
		s.logger.Warn("Публикация события %s не удалась: %v", ev.EventType, err)
	}
}

func (s *Scheduler) updateMetrics() {
	if s.metrics == nil {
		return
	}
	s.metrics.LoadedChunks.Set(float64(s.store.Len()))
	s.metrics.LoadedColumns.Set(float64(s.store.ColumnCount()))
	s.metrics.Viewpoints.Set(float64(len(s.viewpoints)))
	s.metrics.WorkerPending.WithLabelValues("worldgen").Set(float64(s.genWorker.PendingCount()))
	s.metrics.WorkerPending.WithLabelValues("lighting").Set(float64(s.lightWorker.PendingCount()))
}
