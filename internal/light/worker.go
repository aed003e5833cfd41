package light

import (
	"github.com/annel0/voxel-server/internal/logging"
	"github.com/annel0/voxel-server/internal/vec"
	"github.com/annel0/voxel-server/internal/worker"
	"github.com/annel0/voxel-server/internal/world"
)

// Source отдаёт чанки и сводки колонок для сборки окрестности
type Source interface {
	GetChunk(pos vec.Vec3) *world.Chunk
	ColumnSummary(colPos vec.Vec2) *world.HighestOpaqueBlock
}

// Store — часть хранилища, нужная для постановки пересчётов в очередь
type Store interface {
	Source
	NeedsLight(pos vec.Vec3) bool
	MarkLightQueued(pos vec.Vec3)
}

// Worker — фоновый воркер пересчёта света
type Worker = worker.Worker[Neighborhood, *world.LightChunk]

// NewWorker создаёт воркер освещения. Движок с его буферами принадлежит
// горутине воркера и переживает все пересчёты.
func NewWorker(capacity int, logger *logging.Logger) *Worker {
	engine := NewEngine()
	return worker.New("lighting", capacity, func(pos vec.Vec3, nb Neighborhood) *world.LightChunk {
		return engine.ComputeLight(nb)
	}, logger)
}

// BuildNeighborhood собирает окрестность 3x3x3 вокруг pos.
// Возвращает false, если центральный чанк не загружен: без него
// пересчёт не имеет смысла.
func BuildNeighborhood(src Source, pos vec.Vec3) (Neighborhood, bool) {
	nb := Neighborhood{Pos: pos}
	if src.GetChunk(pos) == nil {
		return nb, false
	}
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			nb.Summaries[SummaryIndex(dx, dz)] = src.ColumnSummary(pos.ColumnPos().Offset(dx, dz))
			for dy := -1; dy <= 1; dy++ {
				nb.Chunks[ChunkIndex(dx, dy, dz)] = src.GetChunk(pos.Offset(dx, dy, dz))
			}
		}
	}
	return nb, true
}

// EnqueueChunks ставит в очередь воркера пересчёт света для кандидатов,
// ожидающих его, не более limit за вызов. Кандидат без центрального чанка
// пропускается с предупреждением вместо падения: хранилище могло выгрузить
// чанк между отбором кандидатов и сборкой окрестности.
func EnqueueChunks(st Store, w *Worker, candidates []vec.Vec3, limit int, logger *logging.Logger) int {
	enqueued := 0
	for _, pos := range candidates {
		if enqueued >= limit {
			break
		}
		if !st.NeedsLight(pos) {
			continue
		}
		nb, ok := BuildNeighborhood(st, pos)
		if !ok {
			if logger != nil {
				logger.Warn("Пересчёт света пропущен: чанк %v выгружен", pos)
			}
			continue
		}
		if err := w.Enqueue(pos, nb); err != nil {
			// Очередь заполнена, остальные кандидаты подождут следующего тика
			break
		}
		st.MarkLightQueued(pos)
		enqueued++
	}
	return enqueued
}
