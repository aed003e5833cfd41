// Package protocol определяет сообщения клиент-серверного обмена и их
// бинарную сериализацию. Каждое сообщение кодируется как байт типа,
// затем полезная нагрузка; объёмные данные чанков сжимаются zstd.
package protocol

import (
	"github.com/annel0/voxel-server/internal/vec"
	"github.com/annel0/voxel-server/internal/world"
	"github.com/annel0/voxel-server/internal/world/block"
)

// MessageType — тип сообщения протокола
type MessageType uint8

const (
	// Клиент -> сервер
	MsgSetPos            MessageType = 1 // позиция точки обзора игрока
	MsgSetRenderDistance MessageType = 2 // зона видимости игрока

	// Сервер -> клиент
	MsgGameData    MessageType = 10 // статические игровые данные при подключении
	MsgChunkUpdate MessageType = 11 // блоки и свет одного чанка
)

// Message — общий интерфейс сообщений протокола
type Message interface {
	Type() MessageType
}

// SetPos — новая позиция игрока в мировых координатах
type SetPos struct {
	Pos vec.Vec3Float
}

func (SetPos) Type() MessageType { return MsgSetPos }

// SetRenderDistance — новая зона видимости игрока
type SetRenderDistance struct {
	RenderDistance world.RenderDistance
}

func (SetRenderDistance) Type() MessageType { return MsgSetRenderDistance }

// GameData — статические данные, отправляемые один раз при подключении,
// раньше любых данных чанков
type GameData struct {
	Blocks []block.Type
}

func (GameData) Type() MessageType { return MsgGameData }

// ChunkUpdate несёт блоки и свет чанка. Version позволяет клиенту
// отбрасывать устаревшие доставки при переупорядочивании.
type ChunkUpdate struct {
	Pos     vec.Vec3
	Version uint64
	Blocks  []block.BlockID
	Light   []uint8
}

func (ChunkUpdate) Type() MessageType { return MsgChunkUpdate }
