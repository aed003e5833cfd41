package eventbus

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/annel0/voxel-server/internal/vec"
)

// Типы событий жизненного цикла мира
const (
	EventChunkLoaded           = "chunk.loaded"
	EventChunkUnloaded         = "chunk.unloaded"
	EventViewpointConnected    = "viewpoint.connected"
	EventViewpointDisconnected = "viewpoint.disconnected"
)

// SourceGameServer — имя источника для событий игрового сервера
const SourceGameServer = "voxel-server"

// ChunkEventPayload — полезная нагрузка событий чанков
type ChunkEventPayload struct {
	Pos     vec.Vec3 `json:"pos"`
	Version uint64   `json:"version,omitempty"`
}

// ViewpointEventPayload — полезная нагрузка событий игроков
type ViewpointEventPayload struct {
	ClientID string `json:"client_id"`
}

// NewChunkEvent собирает конверт события чанка
func NewChunkEvent(eventType string, pos vec.Vec3, version uint64) *Envelope {
	payload, _ := json.Marshal(ChunkEventPayload{Pos: pos, Version: version})
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    SourceGameServer,
		EventType: eventType,
		Priority:  1, // телеметрия, при переполнении можно терять
		Payload:   payload,
	}
}

// NewViewpointEvent собирает конверт события подключения или отключения игрока
func NewViewpointEvent(eventType string, clientID string) *Envelope {
	payload, _ := json.Marshal(ViewpointEventPayload{ClientID: clientID})
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    SourceGameServer,
		EventType: eventType,
		Priority:  5, // подключения терять нельзя
		Payload:   payload,
	}
}
