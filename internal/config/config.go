package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	World     WorldConfig     `yaml:"world"`
	Workers   WorkersConfig   `yaml:"workers"`
	Streaming StreamingConfig `yaml:"streaming"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
}

type ServerConfig struct {
	KCPPort     int `yaml:"kcp_port"`
	RESTPort    int `yaml:"rest_port"`
	MetricsPort int `yaml:"metrics_port"`
}

type WorldConfig struct {
	Seed int64 `yaml:"seed"`
}

type WorkersConfig struct {
	WorldgenQueue int `yaml:"worldgen_queue"`
	LightingQueue int `yaml:"lighting_queue"`
}

type StreamingConfig struct {
	TickRate        int `yaml:"tick_rate"`         // тиков в секунду
	ChunksPerTick   int `yaml:"chunks_per_tick"`   // лимит отправляемых чанков за тик на игрока
	LightingPerTick int `yaml:"lighting_per_tick"` // лимит запросов освещения за тик
}

type EventBusConfig struct {
	URL    string `yaml:"url"` // пусто — in-memory шина
	Stream string `yaml:"stream"`
}

// GetKCPPort возвращает KCP порт с поддержкой fallback значений
func (s *ServerConfig) GetKCPPort() int {
	return getPortWithEnvFallback(s.KCPPort, "GAME_KCP_PORT", 7777)
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "GAME_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "GAME_METRICS_PORT", 2112)
}

// GetSeed возвращает сид генерации мира (0 в конфиге — дефолтный)
func (w *WorldConfig) GetSeed() int64 {
	if w.Seed != 0 {
		return w.Seed
	}
	return 1234
}

// GetWorldgenQueue возвращает ёмкость очереди генерации
func (w *WorkersConfig) GetWorldgenQueue() int {
	if w.WorldgenQueue > 0 {
		return w.WorldgenQueue
	}
	return 64
}

// GetLightingQueue возвращает ёмкость очереди освещения
func (w *WorkersConfig) GetLightingQueue() int {
	if w.LightingQueue > 0 {
		return w.LightingQueue
	}
	return 20
}

// GetTickInterval возвращает интервал между тиками
func (s *StreamingConfig) GetTickInterval() time.Duration {
	rate := s.TickRate
	if rate <= 0 {
		rate = 20
	}
	return time.Second / time.Duration(rate)
}

// GetChunksPerTick возвращает лимит отправки чанков за тик
func (s *StreamingConfig) GetChunksPerTick() int {
	if s.ChunksPerTick > 0 {
		return s.ChunksPerTick
	}
	return 20
}

// GetLightingPerTick возвращает лимит запросов освещения за тик
func (s *StreamingConfig) GetLightingPerTick() int {
	if s.LightingPerTick > 0 {
		return s.LightingPerTick
	}
	return 20
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV GAME_CONFIG или возвращает nil, nil.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("GAME_CONFIG")
		if path == "" {
			return nil, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
