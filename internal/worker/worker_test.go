package worker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-server/internal/vec"
)

func TestWorker_ComputesAndDelivers(t *testing.T) {
	w := New("test", 8, func(pos vec.Vec3, input int) int {
		return input * 2
	}, nil)
	defer w.Stop()

	require.NoError(t, w.Enqueue(vec.Vec3{X: 1}, 21))

	var results []int
	require.Eventually(t, func() bool {
		results = append(results, w.PollResults()...)
		return len(results) == 1
	}, time.Second, 5*time.Millisecond, "Результат должен прийти через канал воркера")
	assert.Equal(t, 42, results[0])
	assert.Equal(t, 0, w.PendingCount(), "Выполненная задача должна покинуть очередь")
}

func TestWorker_DeduplicatesByPosition(t *testing.T) {
	block := make(chan struct{})
	var mu sync.Mutex
	computed := 0

	w := New("test", 8, func(pos vec.Vec3, input int) int {
		<-block
		mu.Lock()
		computed++
		mu.Unlock()
		return input
	}, nil)
	defer w.Stop()

	pos := vec.Vec3{X: 1, Y: 2, Z: 3}
	filler := vec.Vec3{X: 9, Y: 9, Z: 9}

	// Первая задача уходит в работу и виснет на block; остальные копятся
	require.NoError(t, w.Enqueue(filler, 0))
	require.Eventually(t, func() bool { return w.PendingCount() == 0 }, time.Second, time.Millisecond)

	require.NoError(t, w.Enqueue(pos, 1))
	require.NoError(t, w.Enqueue(pos, 2))
	require.NoError(t, w.Enqueue(pos, 3))
	assert.Equal(t, 1, w.PendingCount(), "Повторная постановка не должна плодить дубликаты")

	close(block)
	var results []int
	require.Eventually(t, func() bool {
		results = append(results, w.PollResults()...)
		return len(results) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, results, 3, "Последняя постановка должна заменить входные данные")
}

func TestWorker_CapacityBound(t *testing.T) {
	block := make(chan struct{})

	w := New("test", 2, func(pos vec.Vec3, input int) int {
		<-block
		return input
	}, nil)
	defer func() {
		close(block) // сначала отпустить зависший compute, потом останавливать
		w.Stop()
	}()

	// Одна задача уйдёт в работу, две останутся в очереди
	require.NoError(t, w.Enqueue(vec.Vec3{X: 0}, 0))
	require.Eventually(t, func() bool { return w.PendingCount() == 0 }, time.Second, time.Millisecond)

	require.NoError(t, w.Enqueue(vec.Vec3{X: 1}, 1))
	require.NoError(t, w.Enqueue(vec.Vec3{X: 2}, 2))
	assert.ErrorIs(t, w.Enqueue(vec.Vec3{X: 3}, 3), ErrQueueFull, "Сверх ёмкости очередь должна отказывать")

	// Замена ожидающей задачи проходит даже при полной очереди
	assert.NoError(t, w.Enqueue(vec.Vec3{X: 1}, 10), "Дедупликация не должна упираться в ёмкость")
}

func TestWorker_DequeueCancelsPending(t *testing.T) {
	block := make(chan struct{})

	w := New("test", 8, func(pos vec.Vec3, input int) int {
		<-block
		return input
	}, nil)
	defer w.Stop()

	require.NoError(t, w.Enqueue(vec.Vec3{X: 0}, 0))
	require.Eventually(t, func() bool { return w.PendingCount() == 0 }, time.Second, time.Millisecond)

	require.NoError(t, w.Enqueue(vec.Vec3{X: 1}, 1))
	require.True(t, w.IsPending(vec.Vec3{X: 1}))

	w.Dequeue(vec.Vec3{X: 1})
	assert.False(t, w.IsPending(vec.Vec3{X: 1}), "Отменённая задача должна исчезнуть из очереди")

	close(block)
	var results []int
	require.Eventually(t, func() bool {
		results = append(results, w.PollResults()...)
		return len(results) >= 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{0}, results, "Отменённая задача не должна дать результат")
}

func TestWorker_PriorityByViewpointDistance(t *testing.T) {
	block := make(chan struct{})
	w := New("test", 8, func(pos vec.Vec3, input int) int {
		<-block
		return input
	}, nil)
	defer w.Stop()

	// Занимаем воркер, чтобы очередь накопилась до выбора
	require.NoError(t, w.Enqueue(vec.Vec3{X: 100}, -1))
	require.Eventually(t, func() bool { return w.PendingCount() == 0 }, time.Second, time.Millisecond)

	require.NoError(t, w.Enqueue(vec.Vec3{X: 50}, 50))
	require.NoError(t, w.Enqueue(vec.Vec3{X: 3}, 3))
	require.NoError(t, w.Enqueue(vec.Vec3{X: 20}, 20))
	w.UpdateViewpoints([]vec.Vec3{{X: 0, Y: 0, Z: 0}})

	block <- struct{}{} // отпускаем занимавшую задачу
	block <- struct{}{} // первая приоритетная задача
	block <- struct{}{}
	block <- struct{}{}

	var results []int
	require.Eventually(t, func() bool {
		results = append(results, w.PollResults()...)
		return len(results) == 4
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{-1, 3, 20, 50}, results, "Задачи должны выполняться от ближней к дальней")
}

func TestWorker_PollResultsNonBlocking(t *testing.T) {
	w := New("test", 4, func(pos vec.Vec3, input int) int { return input }, nil)
	defer w.Stop()

	done := make(chan struct{})
	go func() {
		w.PollResults()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PollResults не должен блокироваться на пустом канале")
	}
}
