package world

import (
	"sync"

	"github.com/annel0/voxel-server/internal/logging"
	"github.com/annel0/voxel-server/internal/vec"
)

// ServerChunk — запись о загруженном чанке: блоки, свет, версия и флаги
// жизненного цикла освещения.
type ServerChunk struct {
	Chunk   *Chunk
	Light   *LightChunk
	Version uint64
	// InLightQueue — задача пересчёта уже стоит в очереди воркера
	InLightQueue bool
	// NeedsLightUpdate — свет устарел и ему нельзя доверять
	NeedsLightUpdate bool
}

// Column агрегирует данные по вертикальной колонке чанков (общая пара X, Z)
type Column struct {
	// Summary — слитая карта самых высоких непрозрачных блоков всех чанков колонки
	Summary *HighestOpaqueBlock
	// PerChunk — карта по каждому загруженному чанку, ключ — Y чанка
	PerChunk map[int]*HighestOpaqueBlock
	// Loaded — позиции загруженных чанков колонки
	Loaded map[vec.Vec3]struct{}
}

// ChunkStore — авторитетное хранилище загруженных чанков.
// Ведёт глобальный монотонный счётчик версий: каждая мутация записи
// (новые блоки или новый свет) получает следующее значение счётчика,
// поэтому сравнение версий однозначно отвечает, видел ли клиент
// актуальное состояние.
type ChunkStore struct {
	mu       sync.RWMutex
	chunks   map[vec.Vec3]*ServerChunk
	columns  map[vec.Vec2]*Column
	genQueue map[vec.Vec3]struct{}
	version  uint64
	logger   *logging.Logger
}

// NewChunkStore создаёт пустое хранилище
func NewChunkStore(logger *logging.Logger) *ChunkStore {
	return &ChunkStore{
		chunks:   make(map[vec.Vec3]*ServerChunk),
		columns:  make(map[vec.Vec2]*Column),
		genQueue: make(map[vec.Vec3]struct{}),
		logger:   logger,
	}
}

// nextVersion выдаёт следующее значение глобального счётчика версий.
// Вызывается только под mu.
func (s *ChunkStore) nextVersion() uint64 {
	v := s.version
	s.version++
	return v
}

// SetChunk сохраняет сгенерированный или изменённый чанк.
// Запись получает новую версию и помечается на пересчёт света, затем
// обновляется сводка колонки и грязнятся чанки колонок 3x3 вокруг:
// свет соседей зависит от содержимого этого чанка.
func (s *ChunkStore) SetChunk(c *Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := c.Pos
	sc, exists := s.chunks[pos]
	if !exists {
		sc = &ServerChunk{Light: NewLightChunk(pos)}
		s.chunks[pos] = sc
	}
	sc.Chunk = c
	sc.NeedsLightUpdate = true
	sc.Version = s.nextVersion()

	delete(s.genQueue, pos)

	colPos := pos.ColumnPos()
	col, exists := s.columns[colPos]
	if !exists {
		col = &Column{
			Summary:  NewHighestOpaqueBlock(),
			PerChunk: make(map[int]*HighestOpaqueBlock),
			Loaded:   make(map[vec.Vec3]struct{}),
		}
		s.columns[colPos] = col
	}
	col.Loaded[pos] = struct{}{}
	col.PerChunk[pos.Y] = HighestOpaqueFromChunk(c)

	// Сводка пересобирается с нуля: блоки могли стать прозрачнее,
	// а поэлементный максимум умеет только расти
	summary := NewHighestOpaqueBlock()
	for _, hob := range col.PerChunk {
		summary.Merge(hob)
	}
	col.Summary = summary

	s.markColumnsDirty(colPos)
}

// markColumnsDirty помечает на пересчёт света все загруженные чанки
// в колонках 3x3 вокруг colPos. Вызывается только под mu.
func (s *ChunkStore) markColumnsDirty(colPos vec.Vec2) {
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			col, exists := s.columns[colPos.Offset(dx, dz)]
			if !exists {
				continue
			}
			for pos := range col.Loaded {
				if sc, ok := s.chunks[pos]; ok {
					sc.NeedsLightUpdate = true
				}
			}
		}
	}
}

// GetChunk возвращает блоки чанка или nil, если чанк не загружен
func (s *ChunkStore) GetChunk(pos vec.Vec3) *Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sc, exists := s.chunks[pos]; exists {
		return sc.Chunk
	}
	return nil
}

// GetLightChunk возвращает свет чанка или nil, если чанк не загружен
func (s *ChunkStore) GetLightChunk(pos vec.Vec3) *LightChunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sc, exists := s.chunks[pos]; exists {
		return sc.Light
	}
	return nil
}

// Record возвращает запись чанка целиком (блоки, свет, версия).
// Возвращаемая запись — снимок полей; слайсы внутри разделяются.
func (s *ChunkStore) Record(pos vec.Vec3) (ServerChunk, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sc, exists := s.chunks[pos]; exists {
		return *sc, true
	}
	return ServerChunk{}, false
}

// ColumnSummary возвращает сводку колонки или nil, если колонка не загружена
func (s *ChunkStore) ColumnSummary(colPos vec.Vec2) *HighestOpaqueBlock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if col, exists := s.columns[colPos]; exists {
		return col.Summary
	}
	return nil
}

// NeedsLight сообщает, ждёт ли чанк постановки в очередь пересчёта света
func (s *ChunkStore) NeedsLight(pos vec.Vec3) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, exists := s.chunks[pos]
	return exists && sc.NeedsLightUpdate && !sc.InLightQueue
}

// MarkLightQueued фиксирует постановку чанка в очередь пересчёта:
// флаг устаревания снимается сразу, чтобы повторная правка чанка,
// пришедшая во время пересчёта, снова его подняла и вызвала новый проход
func (s *ChunkStore) MarkLightQueued(pos vec.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc, exists := s.chunks[pos]; exists {
		sc.NeedsLightUpdate = false
		sc.InLightQueue = true
	}
}

// ApplyLightResult сохраняет результат пересчёта света.
// Результат для уже выгруженного чанка молча отбрасывается.
// Возвращает true, если свет был принят.
func (s *ChunkStore) ApplyLightResult(lc *LightChunk) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, exists := s.chunks[lc.Pos]
	if !exists {
		return false
	}
	sc.Light = lc
	sc.InLightQueue = false
	sc.Version = s.nextVersion()
	return true
}

// Unload выгружает чанк и подчищает его колонку.
// Пустая колонка удаляется целиком.
func (s *ChunkStore) Unload(pos vec.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.chunks[pos]; !exists {
		return
	}
	delete(s.chunks, pos)

	colPos := pos.ColumnPos()
	if col, exists := s.columns[colPos]; exists {
		delete(col.Loaded, pos)
		delete(col.PerChunk, pos.Y)
		if len(col.Loaded) == 0 {
			delete(s.columns, colPos)
			return
		}
		summary := NewHighestOpaqueBlock()
		for _, hob := range col.PerChunk {
			summary.Merge(hob)
		}
		col.Summary = summary
	}
}

// LoadedPositions возвращает позиции всех загруженных чанков
func (s *ChunkStore) LoadedPositions() []vec.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	positions := make([]vec.Vec3, 0, len(s.chunks))
	for pos := range s.chunks {
		positions = append(positions, pos)
	}
	return positions
}

// Len возвращает количество загруженных чанков
func (s *ChunkStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// ColumnCount возвращает количество загруженных колонок
func (s *ChunkStore) ColumnCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.columns)
}

// GenQueued сообщает, ожидает ли позиция результата генерации
func (s *ChunkStore) GenQueued(pos vec.Vec3) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.genQueue[pos]
	return exists
}

// MarkGenQueued фиксирует постановку позиции в очередь генерации
func (s *ChunkStore) MarkGenQueued(pos vec.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genQueue[pos] = struct{}{}
}

// ClearGenQueued снимает отметку об ожидании генерации
func (s *ChunkStore) ClearGenQueued(pos vec.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.genQueue, pos)
}
