package rules

import (
	"os"
	"path/filepath"
	"testing"

	"panelwatch/pkg/models"
)

const alarmRule = `title: Any alarm
id: panel-alarm
level: high
logsource:
  product: panelwatch
detection:
  selection:
    Event: Alarm
  condition: selection
`

const nightDisarmRule = `title: Disarm events
id: panel-disarm
logsource:
  service: panel
detection:
  selection:
    Event: Disarmed
  condition: selection
`

const foreignRule = `title: Windows thing
logsource:
  product: windows
detection:
  selection:
    EventID: 1
  condition: selection
`

func writeRules(t *testing.T, rules ...string) string {
	t.Helper()
	dir := t.TempDir()
	for i, body := range rules {
		path := filepath.Join(dir, "rule"+string(rune('a'+i))+".yml")
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatalf("write rule: %v", err)
		}
	}
	return dir
}

func TestSigmaEngineMatchesAlarm(t *testing.T) {
	dir := writeRules(t, alarmRule)
	engine, stats, err := NewSigmaEngine(dir)
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	if stats.Loaded != 1 {
		t.Fatalf("loaded = %d, want 1", stats.Loaded)
	}

	tags := engine.Apply(&models.EventRecord{Event: "Alarm", Message: "Alarm Activated"})
	if len(tags) != 1 {
		t.Fatalf("tags = %v, want one match", tags)
	}
	if tags[0].ID != "panel-alarm" || tags[0].Severity != "high" {
		t.Fatalf("tag = %+v", tags[0])
	}

	if tags := engine.Apply(&models.EventRecord{Event: "Zone Open"}); len(tags) != 0 {
		t.Fatalf("unexpected tags for non-alarm event: %v", tags)
	}
}

func TestSigmaEngineDefaultSeverity(t *testing.T) {
	dir := writeRules(t, nightDisarmRule)
	engine, _, err := NewSigmaEngine(dir)
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	tags := engine.Apply(&models.EventRecord{Event: "Disarmed"})
	if len(tags) != 1 || tags[0].Severity != "medium" {
		t.Fatalf("tags = %+v, want one medium tag", tags)
	}
}

func TestSigmaEngineSkipsForeignLogsource(t *testing.T) {
	dir := writeRules(t, alarmRule, foreignRule)
	_, stats, err := NewSigmaEngine(dir)
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	if stats.Loaded != 1 || stats.SkippedSource != 1 {
		t.Fatalf("stats = %+v, want 1 loaded / 1 skipped source", stats)
	}
}

func TestNoopEngine(t *testing.T) {
	var engine Engine = &NoopEngine{}
	if tags := engine.Apply(&models.EventRecord{Event: "Alarm"}); tags != nil {
		t.Fatalf("noop engine returned tags: %v", tags)
	}
}
