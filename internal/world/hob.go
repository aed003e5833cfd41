package world

import (
	"math"

	"github.com/annel0/voxel-server/internal/world/block"
)

// NoOpaqueBlock — значение высоты для колонки, в которой нет ни одного
// непрозрачного блока
const NoOpaqueBlock = math.MinInt64

// HighestOpaqueBlock хранит глобальную координату Y самого высокого
// непрозрачного блока для каждой пары (x, z) чанка. Слияние таких карт по
// колонке даёт сводку, по которой открытость небу проверяется за O(1),
// без повторного сканирования высоты.
type HighestOpaqueBlock struct {
	Y [ChunkArea]int64
}

// NewHighestOpaqueBlock создаёт карту без единого непрозрачного блока
func NewHighestOpaqueBlock() *HighestOpaqueBlock {
	hob := &HighestOpaqueBlock{}
	for i := range hob.Y {
		hob.Y[i] = NoOpaqueBlock
	}
	return hob
}

// HighestOpaqueFromChunk строит карту по содержимому чанка.
// Для каждой пары (x, z) ищется самый высокий непрозрачный блок.
func HighestOpaqueFromChunk(c *Chunk) *HighestOpaqueBlock {
	hob := NewHighestOpaqueBlock()
	baseY := int64(c.Pos.Y) * ChunkSize
	for x := 0; x < ChunkSize; x++ {
		for z := 0; z < ChunkSize; z++ {
			for y := ChunkSize - 1; y >= 0; y-- {
				if block.IsOpaque(c.GetBlock(x, y, z)) {
					hob.Y[x*ChunkSize+z] = baseY + int64(y)
					break
				}
			}
		}
	}
	return hob
}

// Merge поэлементно берёт максимум с другой картой
func (hob *HighestOpaqueBlock) Merge(other *HighestOpaqueBlock) {
	for i := range hob.Y {
		if other.Y[i] > hob.Y[i] {
			hob.Y[i] = other.Y[i]
		}
	}
}

// IsSkyExposed сообщает, открыта ли небу точка с глобальной координатой
// globalY в колонке блоков (x, z)
func (hob *HighestOpaqueBlock) IsSkyExposed(x, z int, globalY int64) bool {
	return globalY > hob.Y[x*ChunkSize+z]
}
