package network

import (
	"sync"

	"github.com/google/uuid"

	"github.com/annel0/voxel-server/internal/protocol"
)

const memoryQueueSize = 256

// MemoryTransport — транспорт внутри процесса, без сети и сериализации.
// Используется в тестах и для одиночной игры: клиент и сервер живут
// в одном процессе и обмениваются сообщениями через каналы.
type MemoryTransport struct {
	mu      sync.Mutex
	events  chan Event
	clients map[ClientID]*MemoryClient
	closed  bool
}

// NewMemoryTransport создаёт транспорт без подключённых клиентов
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{
		events:  make(chan Event, memoryQueueSize),
		clients: make(map[ClientID]*MemoryClient),
	}
}

// MemoryClient — клиентская сторона подключения к MemoryTransport
type MemoryClient struct {
	id        ClientID
	transport *MemoryTransport
	inbox     chan protocol.Message
}

// Connect подключает нового клиента и возвращает его сторону канала
func (t *MemoryTransport) Connect() *MemoryClient {
	client := &MemoryClient{
		id:        ClientID(uuid.NewString()),
		transport: t,
		inbox:     make(chan protocol.Message, memoryQueueSize),
	}
	t.mu.Lock()
	t.clients[client.id] = client
	t.mu.Unlock()
	t.pushEvent(Event{Kind: EventConnected, Client: client.id})
	return client
}

// ReceiveEvent возвращает следующее событие, не блокируясь
func (t *MemoryTransport) ReceiveEvent() Event {
	select {
	case ev := <-t.events:
		return ev
	default:
		return Event{Kind: EventNone}
	}
}

// Send доставляет сообщение в inbox клиента; переполнение теряет сообщение
func (t *MemoryTransport) Send(id ClientID, msg protocol.Message) {
	t.mu.Lock()
	client, exists := t.clients[id]
	t.mu.Unlock()
	if !exists {
		return
	}
	select {
	case client.inbox <- msg:
	default:
	}
}

// Close отключает всех клиентов
func (t *MemoryTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.clients = make(map[ClientID]*MemoryClient)
	return nil
}

func (t *MemoryTransport) pushEvent(ev Event) {
	select {
	case t.events <- ev:
	default:
	}
}

// ID возвращает идентификатор клиента
func (c *MemoryClient) ID() ClientID { return c.id }

// Send отправляет сообщение серверу
func (c *MemoryClient) Send(msg protocol.Message) {
	c.transport.pushEvent(Event{Kind: EventMessage, Client: c.id, Message: msg})
}

// Poll забирает следующее сообщение от сервера или nil, если их нет
func (c *MemoryClient) Poll() protocol.Message {
	select {
	case msg := <-c.inbox:
		return msg
	default:
		return nil
	}
}

// Disconnect отключает клиента от транспорта
func (c *MemoryClient) Disconnect() {
	c.transport.mu.Lock()
	delete(c.transport.clients, c.id)
	c.transport.mu.Unlock()
	c.transport.pushEvent(Event{Kind: EventDisconnected, Client: c.id})
}
