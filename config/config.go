package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	PanelWatch PanelWatchConfig `yaml:"panelwatch"`
}

// PanelWatchConfig is the project configuration.
type PanelWatchConfig struct {
	Input    InputConfig    `yaml:"input"`
	Zones    ZonesConfig    `yaml:"zones"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Rules    RulesConfig    `yaml:"rules"`
	Events   EventsConfig   `yaml:"events"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// InputConfig controls the datagram source.
type InputConfig struct {
	UDP UDPConfig `yaml:"udp"`
}

// UDPConfig controls the UDP syslog listener.
type UDPConfig struct {
	Listen      string        `yaml:"listen"`
	BufferSize  int           `yaml:"buffer_size"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// ZonesConfig supplies the zone directory: inline names, an optional YAML
// file of names, or both. File entries win on conflict.
type ZonesConfig struct {
	Names map[string]string `yaml:"names"`
	File  string            `yaml:"file"`
}

// PipelineConfig controls pipeline behavior.
type PipelineConfig struct {
	Workers       int           `yaml:"workers"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// RulesConfig controls notification rules.
type RulesConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// EventsConfig lists the event sinks. All configured outputs receive every
// event.
type EventsConfig struct {
	Outputs []EventOutputConfig `yaml:"outputs"`
}

// EventOutputConfig configures one event sink.
type EventOutputConfig struct {
	Mode       string                 `yaml:"mode"` // file|http|redis|mqtt|clickhouse
	File       FileOutputConfig       `yaml:"file"`
	HTTP       HTTPOutputConfig       `yaml:"http"`
	Redis      RedisOutputConfig      `yaml:"redis"`
	MQTT       MQTTOutputConfig       `yaml:"mqtt"`
	ClickHouse ClickHouseOutputConfig `yaml:"clickhouse"`
}

// AlertsConfig controls open-zone alerting.
type AlertsConfig struct {
	Enabled bool              `yaml:"enabled"`
	Rules   []AlertRuleConfig `yaml:"rules"`
	Output  AlertOutputConfig `yaml:"output"`
}

// AlertRuleConfig describes one open-zone alert rule.
type AlertRuleConfig struct {
	Label  string        `yaml:"label"`
	Zones  []int         `yaml:"zones"`
	After  time.Duration `yaml:"after"`
	Repeat time.Duration `yaml:"repeat"`
}

// AlertOutputConfig controls the alert sink.
type AlertOutputConfig struct {
	Mode string           `yaml:"mode"` // file|http
	File FileOutputConfig `yaml:"file"`
	HTTP HTTPOutputConfig `yaml:"http"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// FileOutputConfig config for local JSONL output.
type FileOutputConfig struct {
	Path string `yaml:"path"`
}

// HTTPOutputConfig config for webhook output.
type HTTPOutputConfig struct {
	URL     string            `yaml:"url"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

// RedisOutputConfig config for Redis list output.
type RedisOutputConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Key      string        `yaml:"key"`
	Timeout  time.Duration `yaml:"timeout"`
}

// MQTTOutputConfig config for MQTT output.
type MQTTOutputConfig struct {
	Broker      string        `yaml:"broker"`
	ClientID    string        `yaml:"client_id"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	TopicPrefix string        `yaml:"topic_prefix"`
	QoS         byte          `yaml:"qos"`
	Retain      bool          `yaml:"retain"`
	Timeout     time.Duration `yaml:"timeout"`
}

// ClickHouseOutputConfig config for ClickHouse HTTP JSONEachRow writes.
type ClickHouseOutputConfig struct {
	URL      string            `yaml:"url"`
	Database string            `yaml:"database"`
	Table    string            `yaml:"table"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	Timeout  time.Duration     `yaml:"timeout"`
	Headers  map[string]string `yaml:"headers"`
}

// LoggingConfig controls logging output.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
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

// LoadZoneFile reads a YAML mapping of zone number to friendly name.
func LoadZoneFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parse zone file %s: %w", path, err)
	}
	return names, nil
}
