package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"panelwatch/config"
	"panelwatch/internal/alerts"
	"panelwatch/internal/classifier"
	inputudp "panelwatch/internal/input/udp"
	"panelwatch/internal/logger"
	"panelwatch/internal/metrics"
	"panelwatch/internal/output/alerthttp"
	"panelwatch/internal/output/alertjson"
	"panelwatch/internal/output/eventclickhouse"
	"panelwatch/internal/output/eventhttp"
	"panelwatch/internal/output/eventjson"
	"panelwatch/internal/output/eventmqtt"
	"panelwatch/internal/output/eventredis"
	"panelwatch/internal/pipeline"
	"panelwatch/internal/rules"
)

func findConfigFile(configArg string) string {
	if configArg != "" {
		path := configArg
		if _, err := os.Stat(path); err == nil {
			return path
		}
		log.Printf("Warning: config file not found at %s, trying default locations", path)
	}

	if _, err := os.Stat("panelwatch.yml"); err == nil {
		return "panelwatch.yml"
	}

	exePath, err := os.Executable()
	if err == nil {
		path := filepath.Join(filepath.Dir(exePath), "panelwatch.yml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "panelwatch.yml"
}

func applyDefaults(cfg *config.Config) {
	pw := &cfg.PanelWatch

	if pw.Input.UDP.Listen == "" {
		pw.Input.UDP.Listen = ":5140"
	}
	if pw.Input.UDP.BufferSize <= 0 {
		pw.Input.UDP.BufferSize = 2048
	}
	if pw.Input.UDP.ReadTimeout <= 0 {
		pw.Input.UDP.ReadTimeout = 1 * time.Second
	}

	if pw.Pipeline.Workers <= 0 {
		pw.Pipeline.Workers = 4
	}
	if pw.Pipeline.BatchSize <= 0 {
		pw.Pipeline.BatchSize = 64
	}
	if pw.Pipeline.FlushInterval <= 0 {
		pw.Pipeline.FlushInterval = 2 * time.Second
	}

	if len(pw.Events.Outputs) == 0 {
		pw.Events.Outputs = []config.EventOutputConfig{{
			Mode: "file",
			File: config.FileOutputConfig{Path: "output/events.jsonl"},
		}}
	}

	if pw.Alerts.Output.Mode == "" {
		pw.Alerts.Output.Mode = "file"
	}
	if pw.Alerts.Output.File.Path == "" {
		pw.Alerts.Output.File.Path = "output/alerts.jsonl"
	}

	if pw.Metrics.Listen == "" {
		pw.Metrics.Listen = ":9134"
	}
	if pw.Logging.Level == "" {
		pw.Logging.Level = "info"
	}
}

func loadZones(cfg config.ZonesConfig) (classifier.Directory, error) {
	zones := make(classifier.Directory, len(cfg.Names))
	for k, v := range cfg.Names {
		zones[k] = v
	}
	if cfg.File != "" {
		fromFile, err := config.LoadZoneFile(cfg.File)
		if err != nil {
			return nil, err
		}
		for k, v := range fromFile {
			zones[k] = v
		}
	}
	return zones, nil
}

func buildEventWriters(outputs []config.EventOutputConfig) ([]pipeline.EventWriter, error) {
	writers := make([]pipeline.EventWriter, 0, len(outputs))
	for _, out := range outputs {
		switch out.Mode {
		case "file":
			w, err := eventjson.NewWriter(out.File.Path)
			if err != nil {
				return nil, fmt.Errorf("event file writer: %w", err)
			}
			writers = append(writers, w)
			logger.Infof("Event output: file (%s)", out.File.Path)
		case "http":
			w, err := eventhttp.NewWriter(eventhttp.Config{
				URL:     out.HTTP.URL,
				Timeout: out.HTTP.Timeout,
				Headers: out.HTTP.Headers,
			})
			if err != nil {
				return nil, fmt.Errorf("event http writer: %w", err)
			}
			writers = append(writers, w)
			logger.Infof("Event output: http (%s)", out.HTTP.URL)
		case "redis":
			key := out.Redis.Key
			if key == "" {
				key = "panel_events"
			}
			w, err := eventredis.NewWriter(eventredis.Config{
				Addr:     out.Redis.Addr,
				Password: out.Redis.Password,
				DB:       out.Redis.DB,
				Key:      key,
				Timeout:  out.Redis.Timeout,
			})
			if err != nil {
				return nil, fmt.Errorf("event redis writer: %w", err)
			}
			writers = append(writers, w)
			logger.Infof("Event output: redis (%s key=%s)", out.Redis.Addr, key)
		case "mqtt":
			w, err := eventmqtt.NewWriter(eventmqtt.Config{
				Broker:      out.MQTT.Broker,
				ClientID:    out.MQTT.ClientID,
				Username:    out.MQTT.Username,
				Password:    out.MQTT.Password,
				TopicPrefix: out.MQTT.TopicPrefix,
				QoS:         out.MQTT.QoS,
				Retain:      out.MQTT.Retain,
				Timeout:     out.MQTT.Timeout,
			})
			if err != nil {
				return nil, fmt.Errorf("event mqtt writer: %w", err)
			}
			writers = append(writers, w)
			logger.Infof("Event output: mqtt (%s)", out.MQTT.Broker)
		case "clickhouse":
			w, err := eventclickhouse.NewWriter(eventclickhouse.Config{
				URL:      out.ClickHouse.URL,
				Database: out.ClickHouse.Database,
				Table:    out.ClickHouse.Table,
				Username: out.ClickHouse.Username,
				Password: out.ClickHouse.Password,
				Timeout:  out.ClickHouse.Timeout,
				Headers:  out.ClickHouse.Headers,
			})
			if err != nil {
				return nil, fmt.Errorf("event clickhouse writer: %w", err)
			}
			writers = append(writers, w)
			logger.Infof("Event output: clickhouse (%s)", out.ClickHouse.URL)
		default:
			return nil, fmt.Errorf("unknown event output mode: %s", out.Mode)
		}
	}
	return writers, nil
}

func runServe(args []string) {
	configArg := ""
	if len(args) > 0 {
		configArg = args[0]
	}

	configPath := findConfigFile(configArg)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyDefaults(cfg)
	pw := cfg.PanelWatch

	if err := logger.Init(pw.Logging.Enabled, pw.Logging.Level, pw.Logging.File, pw.Logging.Console); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	logger.Infof("panelwatch starting")
	logger.Infof("Config loaded from: %s", configPath)

	zones, err := loadZones(pw.Zones)
	if err != nil {
		logger.Errorf("Failed to load zone names: %v", err)
		log.Fatalf("Failed to load zone names: %v", err)
	}
	logger.Infof("Zone directory: %d named zones", len(zones))

	var engine rules.Engine
	if pw.Rules.Enabled {
		if strings.TrimSpace(pw.Rules.Path) == "" {
			logger.Warnf("Rules enabled but rules.path is empty; rule tagging disabled")
		} else {
			sigmaEngine, stats, err := rules.NewSigmaEngine(pw.Rules.Path)
			if err != nil {
				logger.Errorf("Failed to load Sigma rules from %s: %v", pw.Rules.Path, err)
				log.Fatalf("Failed to load Sigma rules: %v", err)
			}
			engine = sigmaEngine
			logger.Infof("Sigma rules loaded: loaded=%d skipped_complex=%d skipped_source=%d skipped_invalid=%d files=%d",
				stats.Loaded, stats.SkippedComplex, stats.SkippedSource, stats.SkippedInvalid, stats.TotalFiles)
			if stats.Loaded == 0 {
				logger.Warnf("No compatible Sigma rules loaded; rule tagging is effectively disabled")
			}
		}
	}

	var monitor *alerts.Monitor
	var alertWriters []pipeline.AlertWriter
	if pw.Alerts.Enabled {
		rulesList := make([]alerts.Rule, 0, len(pw.Alerts.Rules))
		for _, r := range pw.Alerts.Rules {
			rulesList = append(rulesList, alerts.Rule{
				Label:  r.Label,
				Zones:  r.Zones,
				After:  r.After,
				Repeat: r.Repeat,
			})
		}
		monitor = alerts.NewMonitor(alerts.Config{Rules: rulesList})

		switch pw.Alerts.Output.Mode {
		case "file":
			w, err := alertjson.NewWriter(pw.Alerts.Output.File.Path)
			if err != nil {
				logger.Errorf("Failed to create alert file writer: %v", err)
				log.Fatalf("Failed to create alert file writer: %v", err)
			}
			alertWriters = append(alertWriters, w)
			logger.Infof("Alert output: file (%s)", pw.Alerts.Output.File.Path)
		case "http":
			w, err := alerthttp.NewWriter(alerthttp.Config{
				URL:     pw.Alerts.Output.HTTP.URL,
				Timeout: pw.Alerts.Output.HTTP.Timeout,
				Headers: pw.Alerts.Output.HTTP.Headers,
			})
			if err != nil {
				logger.Errorf("Failed to create alert webhook writer: %v", err)
				log.Fatalf("Failed to create alert webhook writer: %v", err)
			}
			alertWriters = append(alertWriters, w)
			logger.Infof("Alert output: http (%s)", pw.Alerts.Output.HTTP.URL)
		default:
			log.Fatalf("Unknown alert output mode: %s", pw.Alerts.Output.Mode)
		}
	}

	eventWriters, err := buildEventWriters(pw.Events.Outputs)
	if err != nil {
		logger.Errorf("Failed to create event writers: %v", err)
		log.Fatalf("Failed to create event writers: %v", err)
	}

	listener, err := inputudp.NewListener(inputudp.Config{
		Listen:      pw.Input.UDP.Listen,
		BufferSize:  pw.Input.UDP.BufferSize,
		ReadTimeout: pw.Input.UDP.ReadTimeout,
	})
	if err != nil {
		logger.Errorf("Failed to bind UDP listener: %v", err)
		log.Fatalf("Failed to bind UDP listener: %v", err)
	}
	logger.Infof("Listening for panel messages on udp %s", pw.Input.UDP.Listen)

	if pw.Metrics.Enabled {
		go func() {
			logger.Infof("Metrics endpoint on %s/metrics", pw.Metrics.Listen)
			if err := metrics.Serve(pw.Metrics.Listen); err != nil {
				logger.Errorf("Metrics server stopped: %v", err)
			}
		}()
	}

	pipe := pipeline.New(
		listener,
		engine,
		zones,
		monitor,
		eventWriters,
		alertWriters,
		pw.Pipeline.Workers,
		pw.Pipeline.BatchSize,
		pw.Pipeline.FlushInterval,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := pipe.Run(ctx); err != nil && err != context.Canceled {
			logger.Errorf("Pipeline error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Infof("Shutting down")
	cancel()
	time.Sleep(1 * time.Second)

	if err := pipe.Close(); err != nil {
		logger.Errorf("Error closing pipeline: %v", err)
	}

	logger.Infof("panelwatch stopped")
}

// runClassify classifies messages from args or stdin and prints one JSON
// record per line. Handy for checking what a panel message decodes to.
func runClassify(args []string) int {
	fs := flag.NewFlagSet("classify", flag.ContinueOnError)
	zoneFile := fs.String("zones", "", "YAML file mapping zone numbers to names")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var zones classifier.Directory
	if *zoneFile != "" {
		names, err := config.LoadZoneFile(*zoneFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load zone file: %v\n", err)
			return 1
		}
		zones = classifier.Directory(names)
	}

	enc := json.NewEncoder(os.Stdout)
	emit := func(line string) error {
		return enc.Encode(classifier.Classify(line, zones))
	}

	if fs.NArg() > 0 {
		for _, msg := range fs.Args() {
			if err := emit(msg); err != nil {
				fmt.Fprintf(os.Stderr, "failed to encode record: %v\n", err)
				return 1
			}
		}
		return 0
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if err := emit(scanner.Text()); err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode record: %v\n", err)
			return 1
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read stdin: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			runServe(os.Args[2:])
			return
		case "classify":
			os.Exit(runClassify(os.Args[2:]))
		default:
			// Backward-compatible mode: first arg is config path.
			runServe(os.Args[1:])
			return
		}
	}

	runServe(nil)
}
