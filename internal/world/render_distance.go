package world

import "github.com/annel0/voxel-server/internal/vec"

// RenderDistance описывает зону видимости игрока в чанках.
// Границы независимы по каждой оси, то есть зона — параллелепипед,
// а не сфера, и может быть несимметричной.
type RenderDistance struct {
	XMin, XMax int
	YMin, YMax int
	ZMin, ZMax int
}

// DefaultRenderDistance возвращает минимальную зону видимости 3x3x3 чанков
func DefaultRenderDistance() RenderDistance {
	return RenderDistance{XMin: 1, XMax: 1, YMin: 1, YMax: 1, ZMin: 1, ZMax: 1}
}

// IsChunkVisible проверяет, попадает ли чанк chunkPos в зону видимости
// вокруг чанка игрока playerChunk
func (rd RenderDistance) IsChunkVisible(playerChunk, chunkPos vec.Vec3) bool {
	return chunkPos.X-playerChunk.X <= rd.XMax &&
		chunkPos.Y-playerChunk.Y <= rd.YMax &&
		chunkPos.Z-playerChunk.Z <= rd.ZMax &&
		playerChunk.X-chunkPos.X <= rd.XMin &&
		playerChunk.Y-chunkPos.Y <= rd.YMin &&
		playerChunk.Z-chunkPos.Z <= rd.ZMin
}

// Offsets возвращает все относительные смещения чанков внутри зоны видимости
func (rd RenderDistance) Offsets() []vec.Vec3 {
	offsets := make([]vec.Vec3, 0, (rd.XMin+rd.XMax+1)*(rd.YMin+rd.YMax+1)*(rd.ZMin+rd.ZMax+1))
	for x := -rd.XMin; x <= rd.XMax; x++ {
		for y := -rd.YMin; y <= rd.YMax; y++ {
			for z := -rd.ZMin; z <= rd.ZMax; z++ {
				offsets = append(offsets, vec.Vec3{X: x, Y: y, Z: z})
			}
		}
	}
	return offsets
}
