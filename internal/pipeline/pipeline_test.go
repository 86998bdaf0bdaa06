package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"panelwatch/internal/classifier"
	"panelwatch/pkg/models"
)

type fakeSource struct {
	ch chan []byte
}

func (s *fakeSource) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case payload := <-s.ch:
		return payload, nil
	case <-time.After(10 * time.Millisecond):
		return nil, nil
	}
}

func (s *fakeSource) Close() error { return nil }

type collectWriter struct {
	mu     sync.Mutex
	events []*models.EventRecord
	closed bool
}

func (w *collectWriter) Name() string { return "collect" }

func (w *collectWriter) WriteEvents(events []*models.EventRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, events...)
	return nil
}

func (w *collectWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *collectWriter) snapshot() []*models.EventRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*models.EventRecord, len(w.events))
	copy(out, w.events)
	return out
}

type failingWriter struct{}

func (w *failingWriter) Name() string { return "failing" }

func (w *failingWriter) WriteEvents(events []*models.EventRecord) error {
	return errors.New("sink down")
}

func (w *failingWriter) Close() error { return nil }

func runPipeline(t *testing.T, p *Pipeline, src *fakeSource, payloads ...string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	for _, payload := range payloads {
		src.ch <- []byte(payload)
	}

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("pipeline did not stop")
	}
}

func TestPipelineClassifiesAndFansOut(t *testing.T) {
	src := &fakeSource{ch: make(chan []byte, 4)}
	sinkA := &collectWriter{}
	sinkB := &collectWriter{}
	zones := classifier.Directory{"3": "Garage Door"}

	p := New(src, nil, zones, nil, []EventWriter{sinkA, sinkB}, nil, 1, 1, 20*time.Millisecond)
	runPipeline(t, p, src, "Zone Open: 003", "Alarm Activated")

	for _, sink := range []*collectWriter{sinkA, sinkB} {
		events := sink.snapshot()
		if len(events) != 2 {
			t.Fatalf("sink got %d events, want 2", len(events))
		}
		if events[0].Event != "Zone Open" || events[0].ZoneName != "Garage Door" {
			t.Fatalf("first event = %+v", events[0])
		}
		if events[1].Event != "Alarm" {
			t.Fatalf("second event = %+v", events[1])
		}
	}
}

func TestPipelineSurvivesFailingSink(t *testing.T) {
	src := &fakeSource{ch: make(chan []byte, 4)}
	good := &collectWriter{}

	p := New(src, nil, nil, nil, []EventWriter{&failingWriter{}, good}, nil, 1, 1, 20*time.Millisecond)
	runPipeline(t, p, src, "Zone Open: 1", "Zone Closed: 1")

	if events := good.snapshot(); len(events) != 2 {
		t.Fatalf("good sink got %d events despite failing peer, want 2", len(events))
	}
}

func TestPipelineCloseClosesWriters(t *testing.T) {
	src := &fakeSource{ch: make(chan []byte)}
	sink := &collectWriter{}
	p := New(src, nil, nil, nil, []EventWriter{sink}, nil, 1, 1, time.Second)

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !sink.closed {
		t.Fatalf("event writer was not closed")
	}
}
