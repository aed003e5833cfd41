package network

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xtaci/kcp-go/v5"

	"github.com/annel0/voxel-server/internal/logging"
	"github.com/annel0/voxel-server/internal/protocol"
)

const (
	kcpEventQueueSize = 1024
	// maxFrameSize ограничивает кадр: сжатый чанк с запасом меньше
	maxFrameSize = 4 * 1024 * 1024
	writeTimeout = 5 * time.Second
)

// KCPTransport — сетевой транспорт поверх KCP (UDP с ARQ).
// Кадры — 4 байта длины (big-endian) и сериализованное сообщение протокола.
type KCPTransport struct {
	listener *kcp.Listener
	logger   *logging.Logger

	mu       sync.Mutex
	sessions map[ClientID]*kcpSession
	closed   bool

	events chan Event
	wg     sync.WaitGroup
}

type kcpSession struct {
	conn    *kcp.UDPSession
	writeMu sync.Mutex
}

// NewKCPTransport поднимает KCP-листенер на указанном порту
func NewKCPTransport(port int, logger *logging.Logger) (*KCPTransport, error) {
	listener, err := kcp.ListenWithOptions(fmt.Sprintf(":%d", port), nil, 10, 3)
	if err != nil {
		return nil, fmt.Errorf("kcp listen :%d: %w", port, err)
	}

	t := &KCPTransport{
		listener: listener,
		logger:   logger,
		sessions: make(map[ClientID]*kcpSession),
		events:   make(chan Event, kcpEventQueueSize),
	}
	t.wg.Add(1)
	go t.acceptLoop()

	if logger != nil {
		logger.Info("🌐 KCP транспорт слушает порт %d", port)
	}
	return t, nil
}

func (t *KCPTransport) acceptLoop() {
	defer t.wg.Done()
	for {
		conn, err := t.listener.AcceptKCP()
		if err != nil {
			t.mu.Lock()
			closed := t.closed
			t.mu.Unlock()
			if closed {
				return
			}
			if t.logger != nil {
				t.logger.Warn("Ошибка accept KCP: %v", err)
			}
			continue
		}

		// Настройка под игровой трафик: быстрый ретрансмит, без задержки Nagle
		conn.SetNoDelay(1, 10, 2, 1)
		conn.SetWindowSize(256, 256)
		conn.SetStreamMode(true)

		id := ClientID(uuid.NewString())
		t.mu.Lock()
		t.sessions[id] = &kcpSession{conn: conn}
		t.mu.Unlock()

		t.pushEvent(Event{Kind: EventConnected, Client: id})
		if t.logger != nil {
			t.logger.Info("Клиент %s подключился с %s", id, conn.RemoteAddr())
		}

		t.wg.Add(1)
		go t.readLoop(id, conn)
	}
}

// readLoop читает кадры клиента до разрыва соединения
func (t *KCPTransport) readLoop(id ClientID, conn *kcp.UDPSession) {
	defer t.wg.Done()
	defer t.dropSession(id)

	header := make([]byte, 4)
	for {
		if _, err := io.ReadFull(conn, header); err != nil {
			return
		}
		size := binary.BigEndian.Uint32(header)
		if size == 0 || size > maxFrameSize {
			if t.logger != nil {
				t.logger.Warn("Клиент %s прислал кадр недопустимого размера %d", id, size)
			}
			return
		}
		frame := make([]byte, size)
		if _, err := io.ReadFull(conn, frame); err != nil {
			return
		}

		msg, err := protocol.Decode(frame)
		if err != nil {
			if t.logger != nil {
				t.logger.Warn("Клиент %s прислал нечитаемое сообщение: %v", id, err)
			}
			continue
		}
		t.pushEvent(Event{Kind: EventMessage, Client: id, Message: msg})
	}
}

func (t *KCPTransport) dropSession(id ClientID) {
	t.mu.Lock()
	session, exists := t.sessions[id]
	delete(t.sessions, id)
	closed := t.closed
	t.mu.Unlock()

	if !exists {
		return
	}
	_ = session.conn.Close()
	if !closed {
		t.pushEvent(Event{Kind: EventDisconnected, Client: id})
		if t.logger != nil {
			t.logger.Info("Клиент %s отключился", id)
		}
	}
}

// ReceiveEvent возвращает следующее событие, не блокируясь
func (t *KCPTransport) ReceiveEvent() Event {
	select {
	case ev := <-t.events:
		return ev
	default:
		return Event{Kind: EventNone}
	}
}

// Send сериализует и отправляет сообщение клиенту.
// Ошибка отправки рвёт сессию: readLoop заметит и отчитается отключением.
func (t *KCPTransport) Send(id ClientID, msg protocol.Message) {
	t.mu.Lock()
	session, exists := t.sessions[id]
	t.mu.Unlock()
	if !exists {
		return
	}

	data, err := protocol.Encode(msg)
	if err != nil {
		if t.logger != nil {
			t.logger.Error("Сериализация сообщения для %s: %v", id, err)
		}
		return
	}

	frame := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(frame, uint32(len(data)))
	copy(frame[4:], data)

	session.writeMu.Lock()
	defer session.writeMu.Unlock()
	_ = session.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := session.conn.Write(frame); err != nil {
		if t.logger != nil {
			t.logger.Warn("Отправка клиенту %s не удалась: %v", id, err)
		}
		_ = session.conn.Close()
	}
}

// Close останавливает листенер и рвёт все сессии
func (t *KCPTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	sessions := t.sessions
	t.sessions = make(map[ClientID]*kcpSession)
	t.mu.Unlock()

	for _, s := range sessions {
		_ = s.conn.Close()
	}
	err := t.listener.Close()
	t.wg.Wait()
	return err
}

func (t *KCPTransport) pushEvent(ev Event) {
	select {
	case t.events <- ev:
	default:
		if t.logger != nil {
			t.logger.Warn("Очередь сетевых событий переполнена, событие потеряно")
		}
	}
}
