// Package metrics — Prometheus-метрики игрового сервера
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WorldMetrics — метрики жизненного цикла мира и стриминга
type WorldMetrics struct {
	LoadedChunks    prometheus.Gauge
	LoadedColumns   prometheus.Gauge
	Viewpoints      prometheus.Gauge
	ChunksDelivered prometheus.Counter
	ChunksGenerated prometheus.Counter
	LightRecomputes prometheus.Counter
	WorkerPending   *prometheus.GaugeVec
	TickDuration    prometheus.Histogram
}

// NewWorldMetrics создаёт метрики и регистрирует их в дефолтном регистре
func NewWorldMetrics() *WorldMetrics {
	m := &WorldMetrics{
		LoadedChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Name:      "loaded_chunks",
			Help:      "Количество загруженных чанков.",
		}),
		LoadedColumns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Name:      "loaded_columns",
			Help:      "Количество загруженных колонок чанков.",
		}),
		Viewpoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Name:      "connected_viewpoints",
			Help:      "Количество подключённых точек обзора.",
		}),
		ChunksDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "chunks_delivered_total",
			Help:      "Отправленных клиентам обновлений чанков.",
		}),
		ChunksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "chunks_generated_total",
			Help:      "Сгенерированных чанков рельефа.",
		}),
		LightRecomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "light_recomputes_total",
			Help:      "Завершённых пересчётов освещения.",
		}),
		WorkerPending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "voxel",
			Name:      "worker_pending_jobs",
			Help:      "Задач в очередях фоновых воркеров.",
		}, []string{"worker"}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxel",
			Name:      "tick_duration_seconds",
			Help:      "Длительность одного тика сервера.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),
	}

	prometheus.MustRegister(
		m.LoadedChunks, m.LoadedColumns, m.Viewpoints,
		m.ChunksDelivered, m.ChunksGenerated, m.LightRecomputes,
		m.WorkerPending, m.TickDuration,
	)
	return m
}
