package alerts

import (
	"testing"
	"time"

	"panelwatch/pkg/models"
)

func openEvent(zone int, name string) *models.EventRecord {
	z := zone
	return &models.EventRecord{Event: "Zone Open", Zone: &z, ZoneName: name}
}

func closeEvent(zone int) *models.EventRecord {
	z := zone
	return &models.EventRecord{Event: "Zone Close", Zone: &z}
}

func TestMonitorFiresAfterThreshold(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	m := NewMonitor(Config{Rules: []Rule{{Label: "left open", After: 10 * time.Minute}}})
	m.now = func() time.Time { return base }

	m.Observe(openEvent(3, "Garage Door"))

	if alerts := m.Sweep(base.Add(5 * time.Minute)); len(alerts) != 0 {
		t.Fatalf("fired before threshold: %v", alerts)
	}

	alerts := m.Sweep(base.Add(10 * time.Minute))
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
	a := alerts[0]
	if a.Zone != 3 || a.ZoneName != "Garage Door" || a.Label != "left open" {
		t.Fatalf("alert = %+v", a)
	}
	if a.Duration != 10*time.Minute {
		t.Fatalf("duration = %v", a.Duration)
	}
}

func TestMonitorCloseCancels(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	m := NewMonitor(Config{Rules: []Rule{{After: time.Minute}}})
	m.now = func() time.Time { return base }

	m.Observe(openEvent(1, "Front Door"))
	m.Observe(closeEvent(1))

	if alerts := m.Sweep(base.Add(time.Hour)); len(alerts) != 0 {
		t.Fatalf("closed zone still alerted: %v", alerts)
	}
	if n := m.OpenZones(); n != 0 {
		t.Fatalf("open zones = %d, want 0", n)
	}
}

func TestMonitorRestoreCancels(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	m := NewMonitor(Config{Rules: []Rule{{After: time.Minute}}})
	m.now = func() time.Time { return base }

	z := 4
	m.Observe(openEvent(4, ""))
	m.Observe(&models.EventRecord{Event: "Zone Restore", Zone: &z})

	if alerts := m.Sweep(base.Add(time.Hour)); len(alerts) != 0 {
		t.Fatalf("restored zone still alerted: %v", alerts)
	}
}

func TestMonitorRepeats(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	m := NewMonitor(Config{Rules: []Rule{{After: 10 * time.Minute, Repeat: 30 * time.Minute}}})
	m.now = func() time.Time { return base }

	m.Observe(openEvent(2, "Back Door"))

	first := m.Sweep(base.Add(10 * time.Minute))
	if len(first) != 1 || first[0].Repeat != 0 {
		t.Fatalf("first sweep = %+v", first)
	}
	if again := m.Sweep(base.Add(20 * time.Minute)); len(again) != 0 {
		t.Fatalf("repeated inside interval: %v", again)
	}
	second := m.Sweep(base.Add(40 * time.Minute))
	if len(second) != 1 || second[0].Repeat != 1 {
		t.Fatalf("second sweep = %+v", second)
	}
}

func TestMonitorNoRepeatWhenDisabled(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	m := NewMonitor(Config{Rules: []Rule{{After: time.Minute}}})
	m.now = func() time.Time { return base }

	m.Observe(openEvent(2, ""))
	if alerts := m.Sweep(base.Add(time.Minute)); len(alerts) != 1 {
		t.Fatalf("first sweep = %v", alerts)
	}
	if alerts := m.Sweep(base.Add(time.Hour)); len(alerts) != 0 {
		t.Fatalf("repeat fired with Repeat=0: %v", alerts)
	}
}

func TestMonitorZoneFilter(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	m := NewMonitor(Config{Rules: []Rule{{Zones: []int{7}, After: time.Minute}}})
	m.now = func() time.Time { return base }

	m.Observe(openEvent(3, ""))
	m.Observe(openEvent(7, "Freezer Door"))

	alerts := m.Sweep(base.Add(2 * time.Minute))
	if len(alerts) != 1 || alerts[0].Zone != 7 {
		t.Fatalf("alerts = %+v, want only zone 7", alerts)
	}
}

func TestMonitorReopenDoesNotResetTimer(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	m := NewMonitor(Config{Rules: []Rule{{After: 10 * time.Minute}}})

	now := base
	m.now = func() time.Time { return now }

	m.Observe(openEvent(1, ""))
	now = base.Add(5 * time.Minute)
	m.Observe(openEvent(1, "")) // duplicate open keeps the original timestamp

	alerts := m.Sweep(base.Add(10 * time.Minute))
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
	if !alerts[0].OpenedAt.Equal(base) {
		t.Fatalf("opened at = %v, want %v", alerts[0].OpenedAt, base)
	}
}
