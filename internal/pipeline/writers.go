package pipeline

import (
	"context"

	"panelwatch/pkg/models"
)

// Source supplies raw panel datagrams, one per Receive call. A nil payload
// with a nil error means the source was idle; the caller retries.
type Source interface {
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// EventWriter delivers classified event batches to one sink.
type EventWriter interface {
	Name() string
	WriteEvents(events []*models.EventRecord) error
	Close() error
}

// AlertWriter delivers open-zone alert batches to one sink.
type AlertWriter interface {
	Name() string
	WriteAlerts(alerts []*models.ZoneAlert) error
	Close() error
}
