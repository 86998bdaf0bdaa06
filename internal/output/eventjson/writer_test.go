package eventjson

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"panelwatch/pkg/models"
)

func TestWriterAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")

	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	zone := 3
	batch := []*models.EventRecord{
		{Timestamp: time.Now(), Event: "Zone Open", Zone: &zone, ZoneName: "Garage Door", Message: "Zone Open: 003"},
		{Timestamp: time.Now(), Event: "Other", Message: "Keypad backlight on"},
	}
	if err := w.WriteEvents(batch); err != nil {
		t.Fatalf("write events: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var lines []models.EventRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec models.EventRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		lines = append(lines, rec)
	}

	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Event != "Zone Open" || lines[0].Zone == nil || *lines[0].Zone != 3 {
		t.Fatalf("first line = %+v", lines[0])
	}
	if lines[1].Zone != nil {
		t.Fatalf("second line zone = %v, want absent", lines[1].Zone)
	}
}
