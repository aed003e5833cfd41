package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-server/internal/vec"
	"github.com/annel0/voxel-server/internal/world"
	"github.com/annel0/voxel-server/internal/world/block"
)

func TestSerializer_SetPosRoundtrip(t *testing.T) {
	orig := &SetPos{Pos: vec.Vec3Float{X: 12.5, Y: -300.25, Z: 0.125}}
	data, err := Encode(orig)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, orig, decoded, "Позиция должна пережить сериализацию без потерь")
}

func TestSerializer_SetRenderDistanceRoundtrip(t *testing.T) {
	orig := &SetRenderDistance{RenderDistance: world.RenderDistance{
		XMin: 6, XMax: 6, YMin: 3, YMax: 3, ZMin: 6, ZMax: 6,
	}}
	data, err := Encode(orig)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, orig, decoded)
}

func TestSerializer_GameDataCarriesBlockRegistry(t *testing.T) {
	orig := &GameData{Blocks: block.All()}
	data, err := Encode(orig)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	gd, ok := decoded.(*GameData)
	require.True(t, ok)
	assert.Equal(t, orig.Blocks, gd.Blocks, "Регистр блоков должен дойти до клиента целиком")
}

func TestSerializer_ChunkUpdateRoundtrip(t *testing.T) {
	gen := world.NewPerlinGenerator(42)
	c := gen.GenerateChunk(vec.Vec3{X: -3, Y: 0, Z: 7})
	light := make([]uint8, world.ChunkVolume)
	for i := range light {
		light[i] = uint8(i % 16)
	}

	orig := &ChunkUpdate{Pos: c.Pos, Version: 12345, Blocks: c.Blocks, Light: light}
	data, err := Encode(orig)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	cu, ok := decoded.(*ChunkUpdate)
	require.True(t, ok)
	assert.Equal(t, orig.Pos, cu.Pos)
	assert.Equal(t, orig.Version, cu.Version)
	assert.Equal(t, orig.Blocks, cu.Blocks, "Блоки должны пережить RLE и zstd без потерь")
	assert.Equal(t, orig.Light, cu.Light, "Свет должен пережить RLE и zstd без потерь")
}

func TestSerializer_ChunkUpdateCompressesTerrain(t *testing.T) {
	// Сгенерированный рельеф — длинные серии одинаковых блоков,
	// RLE с zstd должны ужать его на порядки
	gen := world.NewPerlinGenerator(42)
	c := gen.GenerateChunk(vec.Vec3{X: 0, Y: 0, Z: 0})

	msg := &ChunkUpdate{Pos: c.Pos, Blocks: c.Blocks, Light: make([]uint8, world.ChunkVolume)}
	data, err := Encode(msg)
	require.NoError(t, err)
	assert.Less(t, len(data), world.ChunkVolume/4, "Кодирование чанка должно быть компактным")
}

func TestSerializer_RejectsCorruptInput(t *testing.T) {
	_, err := Decode(nil)
	assert.Error(t, err, "Пустой буфер должен отклоняться")

	_, err = Decode([]byte{255, 1, 2, 3})
	assert.Error(t, err, "Неизвестный тип сообщения должен отклоняться")

	_, err = Decode([]byte{byte(MsgSetPos), 1, 2})
	assert.Error(t, err, "Обрезанный SetPos должен отклоняться")

	_, err = Decode([]byte{byte(MsgChunkUpdate), 0, 0, 0, 0, 200})
	assert.Error(t, err, "Оборванная секция блоков должна отклоняться")
}

func TestRLE_BlocksRoundtrip(t *testing.T) {
	blocks := make([]block.BlockID, world.ChunkVolume)
	for i := range blocks {
		if i > world.ChunkVolume/2 {
			blocks[i] = block.StoneBlockID
		}
	}
	blocks[0] = block.WaterBlockID

	encoded := appendRLEBlocks(nil, blocks)
	decoded, err := decodeRLEBlocks(encoded)
	require.NoError(t, err)
	assert.Equal(t, blocks, decoded)
}

func TestRLE_RejectsOverflow(t *testing.T) {
	// Серия длиннее объёма чанка
	encoded := appendRLEBlocks(nil, make([]block.BlockID, world.ChunkVolume))
	encoded = append(encoded, encoded...)
	_, err := decodeRLEBlocks(encoded)
	assert.Error(t, err, "Переполнение объёма чанка должно отклоняться")
}
