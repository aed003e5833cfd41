package world

import (
	"github.com/aquilax/go-perlin"

	"github.com/annel0/voxel-server/internal/vec"
	"github.com/annel0/voxel-server/internal/world/block"
)

// ChunkGenerator порождает содержимое чанка по его позиции.
// Генерация обязана быть детерминированной: один сид и одна позиция
// всегда дают байт-в-байт одинаковый чанк.
type ChunkGenerator interface {
	GenerateChunk(pos vec.Vec3) *Chunk
}

// Параметры рельефа
const (
	terrainScale     = 0.01 // масштаб шума по горизонтали
	terrainAmplitude = 32.0 // размах высот рельефа
	seaLevel         = 0    // глобальный уровень воды
	dirtDepth        = 4    // толщина слоя земли под поверхностью
)

// PerlinGenerator — генератор рельефа на основе шума Перлина.
// Высота поверхности определяется 2D-шумом по (x, z), ниже поверхности
// лежат земля и камень, впадины ниже уровня моря заполняются водой.
type PerlinGenerator struct {
	seed  int64
	noise *perlin.Perlin
}

// NewPerlinGenerator создаёт генератор с указанным сидом
func NewPerlinGenerator(seed int64) *PerlinGenerator {
	return &PerlinGenerator{
		seed:  seed,
		noise: perlin.NewPerlin(2, 2, 3, seed),
	}
}

// Seed возвращает сид генератора
func (g *PerlinGenerator) Seed() int64 {
	return g.seed
}

// surfaceHeight возвращает глобальную высоту поверхности в колонке (x, z)
func (g *PerlinGenerator) surfaceHeight(gx, gz int) int {
	n := g.noise.Noise2D(float64(gx)*terrainScale, float64(gz)*terrainScale)
	return int(n * terrainAmplitude)
}

// GenerateChunk генерирует чанк по позиции
func (g *PerlinGenerator) GenerateChunk(pos vec.Vec3) *Chunk {
	c := NewChunk(pos)
	baseX := pos.X * ChunkSize
	baseY := pos.Y * ChunkSize
	baseZ := pos.Z * ChunkSize

	for x := 0; x < ChunkSize; x++ {
		for z := 0; z < ChunkSize; z++ {
			surface := g.surfaceHeight(baseX+x, baseZ+z)
			for y := 0; y < ChunkSize; y++ {
				gy := baseY + y
				var id block.BlockID
				switch {
				case gy < surface-dirtDepth:
					id = block.StoneBlockID
				case gy < surface:
					id = block.DirtBlockID
				case gy == surface:
					if surface <= seaLevel {
						id = block.SandBlockID
					} else {
						id = block.GrassBlockID
					}
				case gy <= seaLevel:
					id = block.WaterBlockID
				default:
					continue // воздух, чанк уже заполнен нулями
				}
				c.SetBlock(x, y, z, id)
			}
		}
	}
	return c
}
