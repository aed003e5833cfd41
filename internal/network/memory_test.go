package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-server/internal/protocol"
	"github.com/annel0/voxel-server/internal/vec"
)

func TestMemoryTransport_ConnectAndExchange(t *testing.T) {
	transport := NewMemoryTransport()
	defer transport.Close()

	client := transport.Connect()

	ev := transport.ReceiveEvent()
	require.Equal(t, EventConnected, ev.Kind, "Первым должно прийти событие подключения")
	assert.Equal(t, client.ID(), ev.Client)

	client.Send(&protocol.SetPos{Pos: vec.Vec3Float{X: 1, Y: 2, Z: 3}})
	ev = transport.ReceiveEvent()
	require.Equal(t, EventMessage, ev.Kind)
	pos, ok := ev.Message.(*protocol.SetPos)
	require.True(t, ok)
	assert.Equal(t, 3.0, pos.Pos.Z)

	transport.Send(client.ID(), &protocol.GameData{})
	msg := client.Poll()
	require.NotNil(t, msg, "Клиент должен получить отправленное сообщение")
	assert.Equal(t, protocol.MsgGameData, msg.Type())
}

func TestMemoryTransport_NonBlockingWhenIdle(t *testing.T) {
	transport := NewMemoryTransport()
	defer transport.Close()

	ev := transport.ReceiveEvent()
	assert.Equal(t, EventNone, ev.Kind, "Пустой транспорт должен сразу вернуть EventNone")

	client := transport.Connect()
	transport.ReceiveEvent()
	assert.Nil(t, client.Poll(), "Пустой inbox клиента не должен блокировать")
}

func TestMemoryTransport_Disconnect(t *testing.T) {
	transport := NewMemoryTransport()
	defer transport.Close()

	client := transport.Connect()
	transport.ReceiveEvent()

	client.Disconnect()
	ev := transport.ReceiveEvent()
	require.Equal(t, EventDisconnected, ev.Kind)
	assert.Equal(t, client.ID(), ev.Client)

	// Отправка отключённому клиенту не должна паниковать
	transport.Send(client.ID(), &protocol.GameData{})
}

func TestMemoryTransport_SendToUnknownClient(t *testing.T) {
	transport := NewMemoryTransport()
	defer transport.Close()
	transport.Send(ClientID("нет такого"), &protocol.GameData{})
}
