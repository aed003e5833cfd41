// Package light реализует пересчёт солнечного освещения чанка по его
// окрестности 3x3x3. Свет уровня 15 заливается из открытых небу ячеек и
// затухает на единицу за шаг BFS, поэтому на результат центрального чанка
// влияют только ячейки в пределах 15 шагов от его границ.
package light

import (
	"github.com/annel0/voxel-server/internal/vec"
	"github.com/annel0/voxel-server/internal/world"
	"github.com/annel0/voxel-server/internal/world/block"
)

// MaxLight — максимальный уровень солнечного света
const MaxLight = 15

const (
	cs = world.ChunkSize
	// n — ребро рабочего буфера: окрестность 3x3x3 чанков
	n = 3 * cs
	// Затухающий от границы свет не доходит дальше MaxLight ячеек вглубь,
	// поэтому BFS ограничен этим окном вокруг центрального чанка
	bfsMin = cs - MaxLight + 1
	bfsMax = 2*cs + MaxLight
)

// Neighborhood — входные данные пересчёта: центральный чанк с 26 соседями
// и сводки девяти колонок. Отсутствующие чанки и сводки равны nil.
type Neighborhood struct {
	Pos vec.Vec3
	// Chunks индексируется как (dx+1)*9 + (dy+1)*3 + (dz+1)
	Chunks [27]*world.Chunk
	// Summaries индексируется как (dx+1)*3 + (dz+1)
	Summaries [9]*world.HighestOpaqueBlock
}

// ChunkIndex возвращает индекс чанка окрестности по смещению (-1..1 по каждой оси)
func ChunkIndex(dx, dy, dz int) int {
	return (dx+1)*9 + (dy+1)*3 + (dz+1)
}

// SummaryIndex возвращает индекс сводки колонки по смещению (-1..1)
func SummaryIndex(dx, dz int) int {
	return (dx+1)*3 + (dz+1)
}

type bfsNode struct {
	x, y, z int16
	level   uint8
}

// Engine владеет рабочими буферами пересчёта и переиспользует их между
// вызовами. Не потокобезопасен: экземпляр принадлежит одной горутине.
type Engine struct {
	light  []uint8
	opaque []bool
	queue  []bfsNode
}

// NewEngine создаёт движок с выделенными буферами
func NewEngine() *Engine {
	return &Engine{
		light:  make([]uint8, n*n*n),
		opaque: make([]bool, n*n*n),
	}
}

func bufIndex(x, y, z int) int {
	return (x*n+y)*n + z
}

// ComputeLight считает солнечное освещение центрального чанка окрестности.
// Результат детерминирован: одна окрестность всегда даёт один и тот же свет.
func (e *Engine) ComputeLight(nb Neighborhood) *world.LightChunk {
	for i := range e.light {
		e.light[i] = 0
		e.opaque[i] = false
	}
	e.queue = e.queue[:0]

	transparentCount := e.seedSkylight(nb)
	e.propagate(transparentCount)

	result := world.NewLightChunk(nb.Pos)
	for x := 0; x < cs; x++ {
		for y := 0; y < cs; y++ {
			for z := 0; z < cs; z++ {
				result.Light[world.BlockIndex(x, y, z)] = e.light[bufIndex(cs+x, cs+y, cs+z)]
			}
		}
	}
	return result
}

// seedSkylight заполняет буферы прозрачности и источников света.
// Открытые небу ячейки получают уровень 15 и встают в очередь BFS.
// Возвращает число прозрачных ячеек центрального чанка без света:
// когда оно обнулится, заливку можно останавливать.
//
// Чанки сканируются от центрального к угловым: как только все прозрачные
// ячейки центра получили свет, дальние чанки можно не рассматривать вовсе.
func (e *Engine) seedSkylight(nb Neighborhood) int {
	transparentCount := 0
	chunkOrder := [3]int{1, 0, 2}

	for _, cx := range chunkOrder {
		for _, cy := range chunkOrder {
			for _, cz := range chunkOrder {
				if cx != 1 && cy != 1 && cz != 1 && transparentCount == 0 {
					// Угловой чанк влияет на центр только по цепочке
					// длиной больше 15, когда центр уже залит
					return 0
				}
				iRange := axisRange(cx)
				jRange := axisRange(cy)
				kRange := axisRange(cz)
				center := cx == 1 && cy == 1 && cz == 1

				summary := nb.Summaries[SummaryIndex(cx-1, cz-1)]
				chunk := nb.Chunks[ChunkIndex(cx-1, cy-1, cz-1)]
				chunkBaseY := int64(nb.Pos.Y+cy-1) * cs

				for i := iRange[0]; i < iRange[1]; i++ {
					for j := jRange[0]; j < jRange[1]; j++ {
						for k := kRange[0]; k < kRange[1]; k++ {
							if chunk != nil && block.IsOpaque(chunk.GetBlock(i, j, k)) {
								e.opaque[bufIndex(cx*cs+i, cy*cs+j, cz*cs+k)] = true
								continue
							}
							globalY := chunkBaseY + int64(j)
							exposed := summary == nil || summary.IsSkyExposed(i, k, globalY)
							if exposed {
								e.setSource(cx*cs+i, cy*cs+j, cz*cs+k)
							} else if center {
								transparentCount++
							}
						}
					}
				}
			}
		}
	}
	return transparentCount
}

// axisRange возвращает полуинтервал локальных координат, который нужно
// просканировать в чанке с индексом c по данной оси: центральный чанк
// целиком, соседи — только приграничная полоса глубиной до 15 ячеек
func axisRange(c int) [2]int {
	switch c {
	case 0:
		return [2]int{cs - MaxLight + 1, cs}
	case 2:
		return [2]int{0, MaxLight - 1}
	default:
		return [2]int{0, cs}
	}
}

func (e *Engine) setSource(x, y, z int) {
	e.light[bufIndex(x, y, z)] = MaxLight
	e.queue = append(e.queue, bfsNode{x: int16(x), y: int16(y), z: int16(z), level: MaxLight})
}

// propagate разливает свет по прозрачным ячейкам, затухая на единицу за шаг.
// Останавливается досрочно, когда каждая прозрачная ячейка центрального
// чанка получила какое-то значение.
func (e *Engine) propagate(transparentCount int) {
	dirs := [6][3]int{
		{1, 0, 0}, {-1, 0, 0},
		{0, 1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
	}

	for head := 0; head < len(e.queue) && transparentCount > 0; head++ {
		node := e.queue[head]
		if node.level <= 1 {
			continue
		}
		next := node.level - 1
		for _, d := range dirs {
			nx := int(node.x) + d[0]
			ny := int(node.y) + d[1]
			nz := int(node.z) + d[2]
			if nx < bfsMin || nx >= bfsMax ||
				ny < bfsMin || ny >= bfsMax ||
				nz < bfsMin || nz >= bfsMax {
				continue
			}
			idx := bufIndex(nx, ny, nz)
			if e.opaque[idx] || e.light[idx] >= next {
				continue
			}
			// Ячейка центра учитывается один раз, при первом значении;
			// дальнейшие улучшения счётчик не трогают
			if e.light[idx] == 0 && inCenter(nx, ny, nz) {
				transparentCount--
			}
			e.light[idx] = next
			if next > 1 {
				e.queue = append(e.queue, bfsNode{x: int16(nx), y: int16(ny), z: int16(nz), level: next})
			}
		}
	}
}

func inCenter(x, y, z int) bool {
	return x >= cs && x < 2*cs && y >= cs && y < 2*cs && z >= cs && z < 2*cs
}
