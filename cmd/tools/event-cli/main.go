// event-cli — консольный хвост событий мира из NATS JetStream.
// Подключается к той же шине, что и сервер, и печатает события по мере
// поступления. Удобен для отладки кластера без изменения сервера.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/annel0/voxel-server/internal/eventbus"
)

func main() {
	var (
		natsURL    = flag.String("nats", "nats://127.0.0.1:4222", "адрес NATS")
		stream     = flag.String("stream", "", "имя JetStream стрима (по умолчанию VOXEL_EVENTS)")
		eventTypes = flag.String("types", "", "фильтр по типам событий, через запятую")
		sources    = flag.String("sources", "", "фильтр по источникам, через запятую")
		verbose    = flag.Bool("v", false, "печатать полезную нагрузку")
	)
	flag.Parse()

	bus, err := eventbus.NewJetStreamBus(*natsURL, *stream, 24*time.Hour)
	if err != nil {
		log.Fatalf("❌ Подключение к NATS не удалось: %v", err)
	}
	defer bus.Close()

	filter := eventbus.Filter{
		Types:   parseList(*eventTypes),
		Sources: parseList(*sources),
	}

	sub, err := bus.Subscribe(context.Background(), filter, func(ctx context.Context, ev *eventbus.Envelope) {
		line := fmt.Sprintf("%s  %-24s src=%s prio=%d",
			ev.Timestamp.Format(time.RFC3339), ev.EventType, ev.Source, ev.Priority)
		if *verbose {
			line += "  " + string(ev.Payload)
		}
		fmt.Println(line)
	})
	if err != nil {
		log.Fatalf("❌ Подписка не удалась: %v", err)
	}
	defer sub.Unsubscribe()

	fmt.Printf("🎬 Слушаем события (%s)...\n", *natsURL)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
