// Package worker реализует фоновый воркер с дедупликацией задач по позиции
// чанка. Очередь ограничена по ёмкости, задачи выбираются по близости к
// точкам обзора игроков, отмена до старта — дешёвая операция над картой.
package worker

import (
	"errors"
	"sync"

	"github.com/annel0/voxel-server/internal/logging"
	"github.com/annel0/voxel-server/internal/vec"
)

// ErrQueueFull возвращается при попытке поставить задачу в заполненную очередь
var ErrQueueFull = errors.New("очередь воркера заполнена")

// ComputeFunc выполняет задачу для позиции pos с входными данными input.
// Вызывается строго из горутины воркера, поэтому может владеть
// немигрирующим состоянием через замыкание.
type ComputeFunc[I, O any] func(pos vec.Vec3, input I) O

// Worker — фоновый воркер над картой ожидающих задач.
// Повторная постановка задачи на ту же позицию заменяет входные данные,
// не плодя дубликатов. Горутина воркера блокируется только когда задач нет.
type Worker[I, O any] struct {
	name    string
	compute ComputeFunc[I, O]

	mu         sync.Mutex
	pending    map[vec.Vec3]I
	viewpoints []vec.Vec3
	capacity   int

	wake    chan struct{}
	results chan O
	quit    chan struct{}
	done    chan struct{}

	logger *logging.Logger
}

// New создаёт воркер и запускает его горутину.
// capacity ограничивает и карту ожидающих задач, и буфер результатов.
func New[I, O any](name string, capacity int, compute ComputeFunc[I, O], logger *logging.Logger) *Worker[I, O] {
	w := &Worker[I, O]{
		name:     name,
		compute:  compute,
		pending:  make(map[vec.Vec3]I),
		capacity: capacity,
		wake:     make(chan struct{}, 1),
		results:  make(chan O, capacity),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger,
	}
	go w.run()
	return w
}

// Enqueue ставит задачу в очередь.
// Задача на уже ожидающую позицию заменяет входные данные и не занимает
// дополнительного места. Возвращает ErrQueueFull при исчерпании ёмкости.
func (w *Worker[I, O]) Enqueue(pos vec.Vec3, input I) error {
	w.mu.Lock()
	if _, exists := w.pending[pos]; !exists && len(w.pending) >= w.capacity {
		w.mu.Unlock()
		return ErrQueueFull
	}
	w.pending[pos] = input
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return nil
}

// Dequeue отменяет ожидающую задачу. Задача, уже взятая в работу,
// не прерывается: её результат придёт и будет отброшен получателем.
func (w *Worker[I, O]) Dequeue(pos vec.Vec3) {
	w.mu.Lock()
	delete(w.pending, pos)
	w.mu.Unlock()
}

// IsPending сообщает, ожидает ли позиция выполнения
func (w *Worker[I, O]) IsPending(pos vec.Vec3) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, exists := w.pending[pos]
	return exists
}

// PendingPositions возвращает позиции всех ожидающих задач
func (w *Worker[I, O]) PendingPositions() []vec.Vec3 {
	w.mu.Lock()
	defer w.mu.Unlock()
	positions := make([]vec.Vec3, 0, len(w.pending))
	for pos := range w.pending {
		positions = append(positions, pos)
	}
	return positions
}

// PendingCount возвращает количество ожидающих задач
func (w *Worker[I, O]) PendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// UpdateViewpoints задаёт точки обзора для приоритизации:
// первой выполняется задача с минимальным квадратом расстояния
// до ближайшей точки обзора
func (w *Worker[I, O]) UpdateViewpoints(viewpoints []vec.Vec3) {
	vps := make([]vec.Vec3, len(viewpoints))
	copy(vps, viewpoints)
	w.mu.Lock()
	w.viewpoints = vps
	w.mu.Unlock()
}

// PollResults забирает накопившиеся результаты, не блокируясь
func (w *Worker[I, O]) PollResults() []O {
	var out []O
	for {
		select {
		case r := <-w.results:
			out = append(out, r)
		default:
			return out
		}
	}
}

// Stop останавливает воркер и дожидается завершения его горутины.
// Ожидающие задачи отбрасываются.
func (w *Worker[I, O]) Stop() {
	close(w.quit)
	<-w.done
}

// takeBest снимает с очереди ближайшую к точкам обзора задачу.
// Вызывается только под mu.
func (w *Worker[I, O]) takeBest() (vec.Vec3, I, bool) {
	var (
		best     vec.Vec3
		bestDist int
		found    bool
	)
	for pos := range w.pending {
		dist := w.distanceToViewpoints(pos)
		if !found || dist < bestDist {
			best = pos
			bestDist = dist
			found = true
		}
	}
	if !found {
		var zero I
		return vec.Vec3{}, zero, false
	}
	input := w.pending[best]
	delete(w.pending, best)
	return best, input, true
}

// distanceToViewpoints возвращает квадрат расстояния до ближайшей точки
// обзора; без точек обзора все задачи равноприоритетны
func (w *Worker[I, O]) distanceToViewpoints(pos vec.Vec3) int {
	if len(w.viewpoints) == 0 {
		return 0
	}
	best := pos.SquaredDistanceTo(w.viewpoints[0])
	for _, vp := range w.viewpoints[1:] {
		if d := pos.SquaredDistanceTo(vp); d < best {
			best = d
		}
	}
	return best
}

func (w *Worker[I, O]) run() {
	defer close(w.done)
	if w.logger != nil {
		w.logger.Debug("Воркер '%s' запущен (ёмкость очереди %d)", w.name, w.capacity)
	}
	for {
		w.mu.Lock()
		pos, input, ok := w.takeBest()
		w.mu.Unlock()

		if !ok {
			select {
			case <-w.quit:
				return
			case <-w.wake:
				continue
			}
		}

		result := w.compute(pos, input)

		select {
		case w.results <- result:
		case <-w.quit:
			return
		}
	}
}
