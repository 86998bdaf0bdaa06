package pipeline

import (
	"context"
	"sync"
	"time"

	"panelwatch/internal/alerts"
	"panelwatch/internal/classifier"
	"panelwatch/internal/logger"
	"panelwatch/internal/metrics"
	"panelwatch/internal/rules"
	"panelwatch/pkg/models"
)

// Pipeline receives panel datagrams, classifies them, and fans the records
// out to every configured sink. Slow or failing sinks never block reception:
// a failed batch is logged, counted, and dropped.
type Pipeline struct {
	source        Source
	engine        rules.Engine
	zones         classifier.Directory
	monitor       *alerts.Monitor
	eventWriters  []EventWriter
	alertWriters  []AlertWriter
	workers       int
	batchSize     int
	flushInterval time.Duration
}

// New creates a pipeline. The monitor and engine may be nil when the
// corresponding features are disabled.
func New(source Source, engine rules.Engine, zones classifier.Directory, monitor *alerts.Monitor, eventWriters []EventWriter, alertWriters []AlertWriter, workers, batchSize int, flushInterval time.Duration) *Pipeline {
	if workers <= 0 {
		workers = 4
	}
	if batchSize <= 0 {
		batchSize = 64
	}
	if flushInterval <= 0 {
		flushInterval = 2 * time.Second
	}
	return &Pipeline{
		source:        source,
		engine:        engine,
		zones:         zones,
		monitor:       monitor,
		eventWriters:  eventWriters,
		alertWriters:  alertWriters,
		workers:       workers,
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Run starts the pipeline loop and blocks until ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	logger.Infof("Panel pipeline started")

	msgCh := make(chan []byte, p.workers*4)
	recCh := make(chan *models.EventRecord, p.workers*4)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.readLoop(ctx, msgCh)
		close(msgCh)
	}()

	var workerWG sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		workerWG.Add(1)
		go func() {
			defer workerWG.Done()
			p.workerLoop(msgCh, recCh)
		}()
	}
	go func() {
		workerWG.Wait()
		close(recCh)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.writeLoop(recCh)
	}()

	wg.Wait()
	return ctx.Err()
}

// Close releases pipeline resources.
func (p *Pipeline) Close() error {
	for _, w := range p.alertWriters {
		if err := w.Close(); err != nil {
			logger.Errorf("Failed to close alert writer %s: %v", w.Name(), err)
		}
	}
	for _, w := range p.eventWriters {
		if err := w.Close(); err != nil {
			logger.Errorf("Failed to close event writer %s: %v", w.Name(), err)
		}
	}
	if p.source != nil {
		return p.source.Close()
	}
	return nil
}

func (p *Pipeline) readLoop(ctx context.Context, out chan<- []byte) {
	for {
		payload, err := p.source.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Errorf("Failed to receive datagram: %v", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if payload == nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		metrics.Datagrams.Inc()
		out <- payload
	}
}

func (p *Pipeline) workerLoop(in <-chan []byte, out chan<- *models.EventRecord) {
	for payload := range in {
		rec := classifier.Classify(string(payload), p.zones)
		if p.engine != nil {
			rec.RuleTags = p.engine.Apply(rec)
		}
		metrics.Events.WithLabelValues(rec.Event).Inc()
		out <- rec
	}
}

func (p *Pipeline) writeLoop(in <-chan *models.EventRecord) {
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	var batch []*models.EventRecord

	flush := func() {
		if len(batch) == 0 {
			return
		}
		for _, w := range p.eventWriters {
			if err := w.WriteEvents(batch); err != nil {
				logger.Errorf("Failed to write events to %s sink, dropping batch of %d: %v", w.Name(), len(batch), err)
				metrics.SinkErrors.WithLabelValues(w.Name()).Inc()
			}
		}
		batch = nil
	}

	for {
		select {
		case <-ticker.C:
			flush()
			p.sweepAlerts()
		case rec, ok := <-in:
			if !ok {
				flush()
				p.sweepAlerts()
				return
			}
			if p.monitor != nil {
				p.monitor.Observe(rec)
			}
			batch = append(batch, rec)
			if len(batch) >= p.batchSize {
				flush()
			}
		}
	}
}

func (p *Pipeline) sweepAlerts() {
	if p.monitor == nil {
		return
	}
	alertsOut := p.monitor.Sweep(time.Now())
	metrics.OpenZones.Set(float64(p.monitor.OpenZones()))
	if len(alertsOut) == 0 {
		return
	}
	metrics.Alerts.Add(float64(len(alertsOut)))
	for _, w := range p.alertWriters {
		if err := w.WriteAlerts(alertsOut); err != nil {
			logger.Errorf("Failed to write alerts to %s sink: %v", w.Name(), err)
			metrics.SinkErrors.WithLabelValues(w.Name()).Inc()
		}
	}
}
