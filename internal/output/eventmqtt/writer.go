package eventmqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"panelwatch/pkg/models"
)

// Config configures the MQTT notifier.
type Config struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
	Retain      bool
	Timeout     time.Duration
}

// Writer publishes each event to an MQTT topic derived from its label,
// for example panelwatch/event/zone_open.
type Writer struct {
	client  mqtt.Client
	prefix  string
	qos     byte
	retain  bool
	timeout time.Duration
}

// NewWriter connects to the broker.
func NewWriter(cfg Config) (*Writer, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker is empty")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "panelwatch"
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "panelwatch"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(cfg.Timeout)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("mqtt connect timeout after %v", cfg.Timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	return &Writer{
		client:  client,
		prefix:  strings.TrimRight(cfg.TopicPrefix, "/"),
		qos:     cfg.QoS,
		retain:  cfg.Retain,
		timeout: cfg.Timeout,
	}, nil
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "mqtt" }

// WriteEvents publishes each event in the batch.
func (w *Writer) WriteEvents(events []*models.EventRecord) error {
	for _, rec := range events {
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		topic := w.prefix + "/event/" + topicSegment(rec.Event)
		token := w.client.Publish(topic, w.qos, w.retain, payload)
		if !token.WaitTimeout(w.timeout) {
			return fmt.Errorf("mqtt publish timeout after %v", w.timeout)
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt publish: %w", err)
		}
	}
	return nil
}

// Close disconnects from the broker.
func (w *Writer) Close() error {
	w.client.Disconnect(250)
	return nil
}

func topicSegment(event string) string {
	if event == "" {
		return "other"
	}
	seg := strings.ToLower(event)
	seg = strings.ReplaceAll(seg, " ", "_")
	seg = strings.ReplaceAll(seg, "/", "_")
	return seg
}
