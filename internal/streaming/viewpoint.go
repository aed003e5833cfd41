// Package streaming решает, какие чанки каждому игроку генерировать,
// пересчитывать и доставлять. Вся работа происходит в серверном тике;
// тяжёлые вычисления уходят фоновым воркерам, результаты забираются
// неблокирующим опросом.
package streaming

import (
	"sort"

	"github.com/annel0/voxel-server/internal/network"
	"github.com/annel0/voxel-server/internal/vec"
	"github.com/annel0/voxel-server/internal/world"
)

// Viewpoint — точка обзора подключённого игрока: позиция, зона видимости
// и версии чанков, которые игрок уже получил
type Viewpoint struct {
	ID             network.ClientID
	Position       vec.Vec3Float
	Chunk          vec.Vec3
	RenderDistance world.RenderDistance

	// closeOffsets — смещения зоны видимости от ближних к дальним;
	// пересчитываются только при смене зоны видимости
	closeOffsets []vec.Vec3
	// delivered — версия чанка на момент последней доставки игроку
	delivered map[vec.Vec3]uint64
}

// NewViewpoint создаёт точку обзора с минимальной зоной видимости
func NewViewpoint(id network.ClientID) *Viewpoint {
	vp := &Viewpoint{
		ID:        id,
		delivered: make(map[vec.Vec3]uint64),
	}
	vp.SetRenderDistance(world.DefaultRenderDistance())
	return vp
}

// SetPosition обновляет позицию игрока и чанк, в котором он находится
func (vp *Viewpoint) SetPosition(pos vec.Vec3Float) {
	vp.Position = pos
	vp.Chunk = pos.ContainingChunk(world.ChunkSize)
}

// SetRenderDistance меняет зону видимости и пересортировывает смещения.
// Отрицательные границы обрезаются до нуля.
func (vp *Viewpoint) SetRenderDistance(rd world.RenderDistance) {
	for _, v := range []*int{&rd.XMin, &rd.XMax, &rd.YMin, &rd.YMax, &rd.ZMin, &rd.ZMax} {
		if *v < 0 {
			*v = 0
		}
	}
	vp.RenderDistance = rd

	offsets := rd.Offsets()
	origin := vec.Vec3{}
	sort.Slice(offsets, func(i, j int) bool {
		di := offsets[i].SquaredDistanceTo(origin)
		dj := offsets[j].SquaredDistanceTo(origin)
		if di != dj {
			return di < dj
		}
		// Стабильный порядок при равных расстояниях ради детерминизма
		if offsets[i].X != offsets[j].X {
			return offsets[i].X < offsets[j].X
		}
		if offsets[i].Y != offsets[j].Y {
			return offsets[i].Y < offsets[j].Y
		}
		return offsets[i].Z < offsets[j].Z
	})
	vp.closeOffsets = offsets
}

// CloseOffsets возвращает смещения зоны видимости от ближних к дальним
func (vp *Viewpoint) CloseOffsets() []vec.Vec3 {
	return vp.closeOffsets
}

// MarkDelivered запоминает версию чанка, отправленную игроку
func (vp *Viewpoint) MarkDelivered(pos vec.Vec3, version uint64) {
	vp.delivered[pos] = version
}

// NeedsDelivery сообщает, должен ли игрок получить чанк с данной версией
func (vp *Viewpoint) NeedsDelivery(pos vec.Vec3, version uint64) bool {
	last, sent := vp.delivered[pos]
	return !sent || last < version
}

// PruneDelivered забывает доставки чанков, ушедших из зоны видимости:
// вернувшись, игрок получит их заново
func (vp *Viewpoint) PruneDelivered() {
	for pos := range vp.delivered {
		if !vp.RenderDistance.IsChunkVisible(vp.Chunk, pos) {
			delete(vp.delivered, pos)
		}
	}
}
