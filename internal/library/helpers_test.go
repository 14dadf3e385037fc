package library_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ghplayer/internal/auth"
	"ghplayer/internal/library"
	"ghplayer/internal/session"
	"ghplayer/internal/testsupport"
	"ghplayer/internal/worker"
)

type fixture struct {
	source    *testsupport.FakeSource
	artwork   *testsupport.FakeArtwork
	host      *session.Host
	navigator *library.Navigator
	queue     *library.QueueBuilder
	registry  *prometheus.Registry
}

func newFixture(t *testing.T, source *testsupport.FakeSource) *fixture {
	t.Helper()
	if source == nil {
		source = &testsupport.FakeSource{}
	}
	w := worker.New(nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start worker: %v", err)
	}
	t.Cleanup(w.Stop)

	registry := prometheus.NewRegistry()
	host := session.NewHost(nil, nil)
	host.SetLoginState(true)
	artwork := &testsupport.FakeArtwork{}
	deps := library.Deps{
		Gate:    auth.NewGate(nil, nil),
		Source:  source,
		Artwork: artwork,
		Worker:  w,
		Metrics: library.NewMetrics(registry),
	}
	cfg := testsupport.NewConfig(t)
	return &fixture{
		source:    source,
		artwork:   artwork,
		host:      host,
		navigator: library.NewNavigator(cfg, deps),
		queue:     library.NewQueueBuilder(cfg, deps),
		registry:  registry,
	}
}

func wait[T any](t *testing.T, future *worker.Future[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return future.Wait(ctx)
}

func ids(nodes []library.ContentNode) []string {
	out := make([]string, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, node.ID)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func fallbackCount(t *testing.T, reg *prometheus.Registry, operation string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "ghplayer_library_fallbacks_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "operation" && label.GetValue() == operation {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
