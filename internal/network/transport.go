// Package network отвечает за доставку сообщений протокола между сервером
// и клиентами. Серверный цикл не блокируется на сети: события копятся в
// буферизованных каналах и забираются неблокирующим опросом, отправка
// best-effort — переполненный или отвалившийся клиент теряет сообщение,
// а не останавливает тик.
package network

import "github.com/annel0/voxel-server/internal/protocol"

// ClientID — уникальный идентификатор подключённого клиента
type ClientID string

// EventKind — вид сетевого события
type EventKind int

const (
	// EventNone — событий нет
	EventNone EventKind = iota
	// EventConnected — подключился новый клиент
	EventConnected
	// EventDisconnected — клиент отключился
	EventDisconnected
	// EventMessage — от клиента пришло сообщение
	EventMessage
)

// Event — сетевое событие для серверного цикла
type Event struct {
	Kind    EventKind
	Client  ClientID
	Message protocol.Message
}

// Transport — серверная сторона сетевого канала
type Transport interface {
	// ReceiveEvent возвращает следующее событие, не блокируясь.
	// Kind == EventNone означает, что событий пока нет.
	ReceiveEvent() Event

	// Send отправляет сообщение клиенту. Доставка best-effort:
	// ошибки отправки логируются и не возвращаются вызывающему.
	Send(id ClientID, msg protocol.Message)

	// Close останавливает транспорт и рвёт все соединения
	Close() error
}
