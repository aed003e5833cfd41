package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-server/internal/vec"
	"github.com/annel0/voxel-server/internal/world/block"
)

func TestChunkStore_SetAndGet(t *testing.T) {
	store := NewChunkStore(nil)
	pos := vec.Vec3{X: 1, Y: 2, Z: 3}

	c := NewChunk(pos)
	c.SetBlock(0, 0, 0, block.StoneBlockID)
	store.SetChunk(c)

	got := store.GetChunk(pos)
	require.NotNil(t, got, "Чанк должен быть загружен после SetChunk")
	assert.Equal(t, block.StoneBlockID, got.GetBlock(0, 0, 0), "Блоки должны сохраниться")

	assert.Nil(t, store.GetChunk(vec.Vec3{X: 9, Y: 9, Z: 9}), "Незагруженный чанк должен вернуть nil")
}

func TestChunkStore_VersionsMonotonic(t *testing.T) {
	store := NewChunkStore(nil)
	posA := vec.Vec3{X: 0, Y: 0, Z: 0}
	posB := vec.Vec3{X: 1, Y: 0, Z: 0}

	store.SetChunk(NewChunk(posA))
	recA, ok := store.Record(posA)
	require.True(t, ok)

	store.SetChunk(NewChunk(posB))
	recB, ok := store.Record(posB)
	require.True(t, ok)
	assert.Greater(t, recB.Version, recA.Version, "Каждая мутация должна получать большую версию")

	// Применение света тоже поднимает версию
	applied := store.ApplyLightResult(NewLightChunk(posA))
	require.True(t, applied)
	recA2, _ := store.Record(posA)
	assert.Greater(t, recA2.Version, recB.Version, "Версия после обновления света должна расти")
}

func TestChunkStore_SetChunkMarksNeighborsDirty(t *testing.T) {
	store := NewChunkStore(nil)
	center := vec.Vec3{X: 0, Y: 0, Z: 0}
	neighbor := vec.Vec3{X: 1, Y: 0, Z: 1}
	far := vec.Vec3{X: 5, Y: 0, Z: 5}

	store.SetChunk(NewChunk(neighbor))
	store.SetChunk(NewChunk(far))

	// Гасим флаги, как будто свет уже посчитан
	store.MarkLightQueued(neighbor)
	store.ApplyLightResult(NewLightChunk(neighbor))
	store.MarkLightQueued(far)
	store.ApplyLightResult(NewLightChunk(far))
	assert.False(t, store.NeedsLight(neighbor))
	assert.False(t, store.NeedsLight(far))

	// Новый чанк в центре грязнит соседние колонки 3x3, но не дальние
	store.SetChunk(NewChunk(center))
	assert.True(t, store.NeedsLight(neighbor), "Сосед по колонке 3x3 должен быть помечен на пересчёт")
	assert.False(t, store.NeedsLight(far), "Дальняя колонка не должна быть затронута")
}

func TestChunkStore_LightLifecycleFlags(t *testing.T) {
	store := NewChunkStore(nil)
	pos := vec.Vec3{X: 0, Y: 0, Z: 0}

	store.SetChunk(NewChunk(pos))
	assert.True(t, store.NeedsLight(pos), "Новый чанк должен требовать пересчёта света")

	store.MarkLightQueued(pos)
	assert.False(t, store.NeedsLight(pos), "Чанк в очереди не должен ставиться повторно")

	// Правка во время пересчёта снова поднимает флаг устаревания,
	// но чанк всё ещё в очереди
	store.SetChunk(NewChunk(pos))
	assert.False(t, store.NeedsLight(pos), "Пока чанк в очереди, повторная постановка запрещена")

	store.ApplyLightResult(NewLightChunk(pos))
	assert.True(t, store.NeedsLight(pos), "После результата устаревший чанк должен снова проситься в очередь")
}

func TestChunkStore_ApplyLightResultStaleDiscarded(t *testing.T) {
	store := NewChunkStore(nil)
	pos := vec.Vec3{X: 2, Y: 0, Z: 2}

	store.SetChunk(NewChunk(pos))
	store.Unload(pos)

	applied := store.ApplyLightResult(NewLightChunk(pos))
	assert.False(t, applied, "Результат для выгруженного чанка должен быть отброшен")
	assert.Nil(t, store.GetLightChunk(pos), "Выгруженный чанк не должен воскресать")
}

func TestChunkStore_UnloadCleansColumn(t *testing.T) {
	store := NewChunkStore(nil)
	lower := vec.Vec3{X: 0, Y: 0, Z: 0}
	upper := vec.Vec3{X: 0, Y: 1, Z: 0}

	store.SetChunk(NewChunk(lower))
	store.SetChunk(NewChunk(upper))
	require.Equal(t, 1, store.ColumnCount(), "Оба чанка в одной колонке")

	store.Unload(upper)
	assert.Equal(t, 1, store.ColumnCount(), "Колонка жива, пока в ней есть чанки")

	store.Unload(lower)
	assert.Equal(t, 0, store.ColumnCount(), "Пустая колонка должна удаляться")
	assert.Equal(t, 0, store.Len())
}

func TestChunkStore_ColumnSummaryTracksHighestOpaque(t *testing.T) {
	store := NewChunkStore(nil)
	lower := vec.Vec3{X: 0, Y: 0, Z: 0}
	upper := vec.Vec3{X: 0, Y: 1, Z: 0}

	cLower := NewChunk(lower)
	cLower.SetBlock(5, 10, 7, block.StoneBlockID)
	store.SetChunk(cLower)

	summary := store.ColumnSummary(lower.ColumnPos())
	require.NotNil(t, summary)
	assert.EqualValues(t, 10, summary.Y[5*ChunkSize+7], "Сводка должна указывать на камень в нижнем чанке")

	cUpper := NewChunk(upper)
	cUpper.SetBlock(5, 3, 7, block.StoneBlockID)
	store.SetChunk(cUpper)

	summary = store.ColumnSummary(lower.ColumnPos())
	assert.EqualValues(t, ChunkSize+3, summary.Y[5*ChunkSize+7], "Слияние должно брать максимум по колонке")

	// Вода прозрачная и не должна попадать в сводку
	assert.EqualValues(t, NoOpaqueBlock, summary.Y[0], "Пустая колонка блоков не имеет непрозрачной высоты")

	store.Unload(upper)
	summary = store.ColumnSummary(lower.ColumnPos())
	assert.EqualValues(t, 10, summary.Y[5*ChunkSize+7], "После выгрузки верхнего чанка сводка должна опуститься")
}

func TestHighestOpaqueBlock_SkyExposure(t *testing.T) {
	c := NewChunk(vec.Vec3{X: 0, Y: 0, Z: 0})
	c.SetBlock(1, 20, 1, block.DirtBlockID)
	c.SetBlock(1, 5, 1, block.StoneBlockID)
	c.SetBlock(2, 8, 2, block.WaterBlockID)

	hob := HighestOpaqueFromChunk(c)
	assert.False(t, hob.IsSkyExposed(1, 1, 20), "Сам непрозрачный блок небу не открыт")
	assert.False(t, hob.IsSkyExposed(1, 1, 10), "Точка под непрозрачным блоком закрыта")
	assert.True(t, hob.IsSkyExposed(1, 1, 21), "Точка над самым высоким непрозрачным блоком открыта")
	assert.True(t, hob.IsSkyExposed(2, 2, 0), "Вода не должна закрывать небо")
}
