package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-server/internal/vec"
	"github.com/annel0/voxel-server/internal/world/block"
)

func TestPerlinGenerator_Deterministic(t *testing.T) {
	genA := NewPerlinGenerator(1234)
	genB := NewPerlinGenerator(1234)
	pos := vec.Vec3{X: 3, Y: 0, Z: -2}

	chunkA := genA.GenerateChunk(pos)
	chunkB := genB.GenerateChunk(pos)
	assert.Equal(t, chunkA.Blocks, chunkB.Blocks, "Один сид и позиция должны давать одинаковые чанки")

	genC := NewPerlinGenerator(9999)
	chunkC := genC.GenerateChunk(pos)
	assert.NotEqual(t, chunkA.Blocks, chunkC.Blocks, "Разные сиды должны давать разный рельеф")
}

func TestPerlinGenerator_TerrainLayers(t *testing.T) {
	gen := NewPerlinGenerator(1234)

	// Чанк глубоко под землёй состоит из камня целиком
	deep := gen.GenerateChunk(vec.Vec3{X: 0, Y: -10, Z: 0})
	for i := 0; i < ChunkVolume; i += 997 {
		require.Equal(t, block.StoneBlockID, deep.Blocks[i], "Глубина должна быть каменной")
	}

	// Чанк высоко в небе полностью воздушный
	sky := gen.GenerateChunk(vec.Vec3{X: 0, Y: 10, Z: 0})
	for i := 0; i < ChunkVolume; i += 997 {
		require.Equal(t, block.AirBlockID, sky.Blocks[i], "Высота должна быть воздушной")
	}
}

func TestPerlinGenerator_SurfaceHasOpaqueTop(t *testing.T) {
	gen := NewPerlinGenerator(1234)

	// Рельеф с амплитудой 32 не опускается ниже Y=-32, поэтому в чанке Y=-1
	// каждая колонка обязана содержать хотя бы один непрозрачный блок
	c := gen.GenerateChunk(vec.Vec3{X: 0, Y: -1, Z: 0})
	hob := HighestOpaqueFromChunk(c)
	for i := range hob.Y {
		assert.NotEqual(t, int64(NoOpaqueBlock), hob.Y[i], "Каждая колонка поверхностного чанка должна иметь непрозрачный блок")
	}
}
