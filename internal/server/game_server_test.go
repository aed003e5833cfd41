package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-server/internal/config"
	"github.com/annel0/voxel-server/internal/network"
	"github.com/annel0/voxel-server/internal/protocol"
)

func TestGameServer_EndToEndOverMemoryTransport(t *testing.T) {
	cfg := &config.Config{}
	cfg.Streaming.TickRate = 100 // быстрые тики, чтобы тест не ждал

	transport := network.NewMemoryTransport()
	gs := New(cfg, transport, nil, nil, nil)
	gs.Start()
	defer gs.Stop()

	client := transport.Connect()

	var first protocol.Message
	require.Eventually(t, func() bool {
		if first == nil {
			first = client.Poll()
		}
		return first != nil
	}, 5*time.Second, 5*time.Millisecond, "Клиент должен получить ответ сервера")
	assert.Equal(t, protocol.MsgGameData, first.Type(), "Первым приходит сообщение со статическими данными")

	seen := make(map[protocol.MessageType]bool)
	require.Eventually(t, func() bool {
		for msg := client.Poll(); msg != nil; msg = client.Poll() {
			seen[msg.Type()] = true
		}
		return seen[protocol.MsgChunkUpdate]
	}, 10*time.Second, 5*time.Millisecond, "Сервер должен начать доставку чанков")

	assert.NotZero(t, gs.Store().Len(), "Вокруг игрока должны загрузиться чанки")
	assert.Equal(t, 1, gs.ViewpointCount())
}
