package light

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-server/internal/vec"
	"github.com/annel0/voxel-server/internal/world"
	"github.com/annel0/voxel-server/internal/world/block"
)

// airNeighborhood собирает окрестность из полностью воздушных чанков
// с пустыми сводками: всё открыто небу
func airNeighborhood(pos vec.Vec3) Neighborhood {
	nb := Neighborhood{Pos: pos}
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			nb.Summaries[SummaryIndex(dx, dz)] = world.NewHighestOpaqueBlock()
			for dy := -1; dy <= 1; dy++ {
				nb.Chunks[ChunkIndex(dx, dy, dz)] = world.NewChunk(pos.Offset(dx, dy, dz))
			}
		}
	}
	return nb
}

// shieldedSummary — сводка, закрывающая небо над всей колонкой
func shieldedSummary() *world.HighestOpaqueBlock {
	hob := world.NewHighestOpaqueBlock()
	for i := range hob.Y {
		hob.Y[i] = 1 << 30
	}
	return hob
}

func TestEngine_SkyExposedCellsGetMaxLight(t *testing.T) {
	engine := NewEngine()
	lc := engine.ComputeLight(airNeighborhood(vec.Vec3{}))

	for _, p := range [][3]int{{0, 0, 0}, {31, 31, 31}, {15, 7, 23}} {
		assert.Equal(t, uint8(MaxLight), lc.GetLight(p[0], p[1], p[2]),
			"Открытая небу ячейка должна получить уровень 15")
	}
}

func TestEngine_Deterministic(t *testing.T) {
	nb := airNeighborhood(vec.Vec3{})
	// Непрозрачная плита в центре для нетривиального распределения
	center := nb.Chunks[ChunkIndex(0, 0, 0)]
	for x := 0; x < world.ChunkSize; x++ {
		for z := 0; z < world.ChunkSize; z++ {
			center.SetBlock(x, 16, z, block.StoneBlockID)
		}
	}
	summary := world.HighestOpaqueFromChunk(center)
	for i := 0; i < 9; i++ {
		nb.Summaries[i].Merge(summary)
	}

	a := NewEngine().ComputeLight(nb)
	b := NewEngine().ComputeLight(nb)
	assert.Equal(t, a.Light, b.Light, "Одинаковая окрестность должна давать одинаковый свет")

	// Переиспользование буферов движка не должно влиять на результат
	engine := NewEngine()
	engine.ComputeLight(airNeighborhood(vec.Vec3{X: 5}))
	c := engine.ComputeLight(nb)
	assert.Equal(t, a.Light, c.Light, "Грязные буферы не должны протекать между пересчётами")
}

func TestEngine_OpaqueCellsHaveZeroLight(t *testing.T) {
	nb := airNeighborhood(vec.Vec3{})
	center := nb.Chunks[ChunkIndex(0, 0, 0)]
	center.SetBlock(10, 10, 10, block.StoneBlockID)

	lc := NewEngine().ComputeLight(nb)
	assert.Equal(t, uint8(0), lc.GetLight(10, 10, 10), "Непрозрачная ячейка всегда тёмная")
}

func TestEngine_ShieldedCellsStayDark(t *testing.T) {
	// Небо закрыто во всех девяти колонках, соседи целиком непрозрачные:
	// источников света нет вообще
	nb := Neighborhood{Pos: vec.Vec3{}}
	for i := 0; i < 9; i++ {
		nb.Summaries[i] = shieldedSummary()
	}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				c := world.NewChunk(vec.Vec3{X: dx, Y: dy, Z: dz})
				for i := range c.Blocks {
					c.Blocks[i] = block.StoneBlockID
				}
				nb.Chunks[ChunkIndex(dx, dy, dz)] = c
			}
		}
	}
	// Воздушный карман внутри центрального чанка
	center := nb.Chunks[ChunkIndex(0, 0, 0)]
	for x := 10; x < 14; x++ {
		for y := 10; y < 14; y++ {
			for z := 10; z < 14; z++ {
				center.SetBlock(x, y, z, block.AirBlockID)
			}
		}
	}

	lc := NewEngine().ComputeLight(nb)
	for x := 10; x < 14; x++ {
		for y := 10; y < 14; y++ {
			for z := 10; z < 14; z++ {
				require.Equal(t, uint8(0), lc.GetLight(x, y, z),
					"Карман без пути к источнику должен остаться тёмным")
			}
		}
	}
}

func TestEngine_LightDecaysWithTaxicabDistance(t *testing.T) {
	// Небо закрыто везде, кроме колонки блоков (0, 0) центрального чанка:
	// единственный источник — вертикальный столб света уровня 15
	nb := airNeighborhood(vec.Vec3{})
	for i := 0; i < 9; i++ {
		nb.Summaries[i] = shieldedSummary()
	}
	open := shieldedSummary()
	open.Y[0] = world.NoOpaqueBlock
	nb.Summaries[SummaryIndex(0, 0)] = open

	lc := NewEngine().ComputeLight(nb)

	assert.Equal(t, uint8(MaxLight), lc.GetLight(0, 5, 0), "Столб под открытым небом держит уровень 15")
	assert.Equal(t, uint8(MaxLight-1), lc.GetLight(1, 5, 0), "Шаг в сторону затухает на единицу")
	assert.Equal(t, uint8(MaxLight-5), lc.GetLight(3, 5, 2), "Уровень падает на таксикэб-расстояние")
	assert.Equal(t, uint8(0), lc.GetLight(16, 5, 0), "Дальше 15 шагов от источника света нет")
	assert.Equal(t, uint8(1), lc.GetLight(14, 5, 0))
}

func TestEngine_MissingNeighborsTreatedBySummary(t *testing.T) {
	// Соседи не загружены (nil), сводки закрывают небо:
	// незагруженные объёмы прозрачны, но не светятся
	nb := Neighborhood{Pos: vec.Vec3{}}
	for i := 0; i < 9; i++ {
		nb.Summaries[i] = shieldedSummary()
	}
	nb.Chunks[ChunkIndex(0, 0, 0)] = world.NewChunk(vec.Vec3{})

	lc := NewEngine().ComputeLight(nb)
	assert.Equal(t, uint8(0), lc.GetLight(15, 15, 15), "Без источников весь центр тёмный")

	// А с пустыми сводками незагруженный объём считается открытым небу
	// и светит в центр через границу
	for i := 0; i < 9; i++ {
		nb.Summaries[i] = world.NewHighestOpaqueBlock()
	}
	lc = NewEngine().ComputeLight(nb)
	assert.Equal(t, uint8(MaxLight), lc.GetLight(15, 15, 15),
		"Пустая сводка означает открытое небо даже без загруженного чанка")
}
