package world

import (
	"github.com/annel0/voxel-server/internal/vec"
	"github.com/annel0/voxel-server/internal/world/block"
)

// ChunkSize — длина ребра чанка в блоках
const ChunkSize = 32

// ChunkVolume — количество блоков в чанке
const ChunkVolume = ChunkSize * ChunkSize * ChunkSize

// ChunkArea — количество колонок блоков в чанке (проекция на плоскость XZ)
const ChunkArea = ChunkSize * ChunkSize

// Chunk представляет кубический участок мира размером 32x32x32 блоков.
// После генерации содержимое не меняется, кроме явных правок блоков;
// любое изменение проходит через ChunkStore, который ведёт версии.
type Chunk struct {
	Pos    vec.Vec3
	Blocks []block.BlockID // len == ChunkVolume, скан-порядок x, затем y, затем z
}

// NewChunk создаёт пустой (полностью воздушный) чанк
func NewChunk(pos vec.Vec3) *Chunk {
	return &Chunk{
		Pos:    pos,
		Blocks: make([]block.BlockID, ChunkVolume),
	}
}

// BlockIndex возвращает индекс блока в массиве по локальным координатам
func BlockIndex(x, y, z int) int {
	return (x*ChunkSize+y)*ChunkSize + z
}

// GetBlock возвращает ID блока по локальным координатам
func (c *Chunk) GetBlock(x, y, z int) block.BlockID {
	return c.Blocks[BlockIndex(x, y, z)]
}

// SetBlock устанавливает блок по локальным координатам
func (c *Chunk) SetBlock(x, y, z int, id block.BlockID) {
	c.Blocks[BlockIndex(x, y, z)] = id
}

// LightChunk хранит уровни освещённости 0..15 параллельно блокам чанка.
// Значениям можно доверять только пока чанк не помечен needsLightUpdate.
type LightChunk struct {
	Pos   vec.Vec3
	Light []uint8 // len == ChunkVolume, тот же скан-порядок, что и Blocks
}

// NewLightChunk создаёт полностью тёмный световой чанк
func NewLightChunk(pos vec.Vec3) *LightChunk {
	return &LightChunk{
		Pos:   pos,
		Light: make([]uint8, ChunkVolume),
	}
}

// GetLight возвращает уровень освещённости по локальным координатам
func (lc *LightChunk) GetLight(x, y, z int) uint8 {
	return lc.Light[BlockIndex(x, y, z)]
}
