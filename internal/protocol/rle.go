package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/annel0/voxel-server/internal/world"
	"github.com/annel0/voxel-server/internal/world/block"
)

// RLE-кодирование содержимого чанков: пары (длина серии, значение)
// в uvarint по фиксированному скан-порядку блоков чанка. Сгенерированный
// рельеф состоит из длинных горизонтов одного блока, поэтому серии
// сжимают его на порядки ещё до zstd.

// appendRLEBlocks кодирует массив блоков чанка в dst
func appendRLEBlocks(dst []byte, blocks []block.BlockID) []byte {
	for i := 0; i < len(blocks); {
		j := i + 1
		for j < len(blocks) && blocks[j] == blocks[i] {
			j++
		}
		dst = binary.AppendUvarint(dst, uint64(j-i))
		dst = binary.AppendUvarint(dst, uint64(blocks[i]))
		i = j
	}
	return dst
}

// decodeRLEBlocks разворачивает RLE-поток в ровно world.ChunkVolume блоков
func decodeRLEBlocks(data []byte) ([]block.BlockID, error) {
	blocks := make([]block.BlockID, 0, world.ChunkVolume)
	for len(data) > 0 {
		run, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, fmt.Errorf("повреждённая длина серии RLE")
		}
		data = data[n:]
		value, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, fmt.Errorf("повреждённое значение RLE")
		}
		data = data[n:]
		if run == 0 || uint64(len(blocks))+run > world.ChunkVolume {
			return nil, fmt.Errorf("серия RLE выходит за объём чанка")
		}
		for k := uint64(0); k < run; k++ {
			blocks = append(blocks, block.BlockID(value))
		}
	}
	if len(blocks) != world.ChunkVolume {
		return nil, fmt.Errorf("RLE-поток дал %d блоков вместо %d", len(blocks), world.ChunkVolume)
	}
	return blocks, nil
}

// appendRLELight кодирует массив уровней света чанка в dst
func appendRLELight(dst []byte, light []uint8) []byte {
	for i := 0; i < len(light); {
		j := i + 1
		for j < len(light) && light[j] == light[i] {
			j++
		}
		dst = binary.AppendUvarint(dst, uint64(j-i))
		dst = append(dst, light[i])
		i = j
	}
	return dst
}

// decodeRLELight разворачивает RLE-поток в ровно world.ChunkVolume уровней
func decodeRLELight(data []byte) ([]uint8, error) {
	light := make([]uint8, 0, world.ChunkVolume)
	for len(data) > 0 {
		run, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, fmt.Errorf("повреждённая длина серии RLE света")
		}
		data = data[n:]
		if len(data) == 0 {
			return nil, fmt.Errorf("RLE света оборван на значении")
		}
		value := data[0]
		data = data[1:]
		if run == 0 || uint64(len(light))+run > world.ChunkVolume {
			return nil, fmt.Errorf("серия RLE света выходит за объём чанка")
		}
		for k := uint64(0); k < run; k++ {
			light = append(light, value)
		}
	}
	if len(light) != world.ChunkVolume {
		return nil, fmt.Errorf("RLE света дал %d уровней вместо %d", len(light), world.ChunkVolume)
	}
	return light, nil
}
