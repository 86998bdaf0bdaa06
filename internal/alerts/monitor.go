package alerts

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"panelwatch/pkg/models"
)

// Rule describes one open-zone alert: fire after a zone has been open for
// After, then again every Repeat until it closes. An empty Zones list applies
// the rule to every zone.
type Rule struct {
	Label  string
	Zones  []int
	After  time.Duration
	Repeat time.Duration // 0 disables repeats
}

// Config controls the monitor.
type Config struct {
	Rules []Rule
}

// Monitor tracks zones left open. State is keyed by (zone, rule) and
// cancelled by the matching close or restore event.
type Monitor struct {
	mu    sync.Mutex
	rules []Rule
	open  map[stateKey]*zoneState
	now   func() time.Time
}

type stateKey struct {
	zone int
	rule int
}

type zoneState struct {
	zoneName  string
	openedAt  time.Time
	lastFired time.Time
	fired     int
}

// NewMonitor creates a monitor. Rules without a threshold default to five
// minutes.
func NewMonitor(cfg Config) *Monitor {
	rules := make([]Rule, len(cfg.Rules))
	copy(rules, cfg.Rules)
	for i := range rules {
		if rules[i].After <= 0 {
			rules[i].After = 5 * time.Minute
		}
	}
	return &Monitor{
		rules: rules,
		open:  make(map[stateKey]*zoneState),
		now:   time.Now,
	}
}

// Observe feeds one classified event into the monitor. Zone Open starts the
// per-rule timers; Zone Close and Zone Restore cancel them.
func (m *Monitor) Observe(rec *models.EventRecord) {
	if rec == nil || rec.Zone == nil {
		return
	}
	zone := *rec.Zone

	m.mu.Lock()
	defer m.mu.Unlock()

	switch rec.Event {
	case "Zone Open":
		now := m.now()
		for i, rule := range m.rules {
			if !rule.applies(zone) {
				continue
			}
			key := stateKey{zone: zone, rule: i}
			if _, tracked := m.open[key]; tracked {
				continue
			}
			m.open[key] = &zoneState{zoneName: rec.ZoneName, openedAt: now}
		}
	case "Zone Close", "Zone Restore":
		for i := range m.rules {
			delete(m.open, stateKey{zone: zone, rule: i})
		}
	}
}

// Sweep returns alerts for zones open past their rule threshold. Call it
// periodically; each rule fires once at the threshold and then on its repeat
// interval.
func (m *Monitor) Sweep(now time.Time) []*models.ZoneAlert {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.ZoneAlert
	for key, state := range m.open {
		rule := m.rules[key.rule]
		elapsed := now.Sub(state.openedAt)
		if elapsed < rule.After {
			continue
		}
		if state.fired > 0 {
			if rule.Repeat <= 0 || now.Sub(state.lastFired) < rule.Repeat {
				continue
			}
		}

		out = append(out, &models.ZoneAlert{
			AlertID:  newAlertID(key.zone),
			Zone:     key.zone,
			ZoneName: state.zoneName,
			Label:    rule.Label,
			OpenedAt: state.openedAt,
			At:       now,
			Duration: elapsed,
			Repeat:   state.fired,
		})
		state.fired++
		state.lastFired = now
	}
	return out
}

// OpenZones reports the number of distinct zones currently tracked as open.
func (m *Monitor) OpenZones() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	zones := make(map[int]struct{}, len(m.open))
	for key := range m.open {
		zones[key.zone] = struct{}{}
	}
	return len(zones)
}

func (r Rule) applies(zone int) bool {
	if len(r.Zones) == 0 {
		return true
	}
	for _, z := range r.Zones {
		if z == zone {
			return true
		}
	}
	return false
}

func newAlertID(zone int) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("zone%d-%d", zone, time.Now().UnixNano())
	}
	return fmt.Sprintf("zone%d-%s", zone, hex.EncodeToString(buf))
}
