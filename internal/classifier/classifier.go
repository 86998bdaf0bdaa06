package classifier

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"panelwatch/pkg/models"
)

// Classify turns one raw datagram into an EventRecord. It never fails:
// unrecognized input comes back as the "Other" event, so callers branch on
// the event label alone. The function holds no state and is safe to call
// concurrently.
func Classify(raw string, zones Directory) *models.EventRecord {
	content := strings.TrimSpace(stripHeader(raw))

	rec := &models.EventRecord{
		Timestamp: time.Now(),
		Raw:       strings.TrimSpace(raw),
	}

	for _, match := range matchers {
		if c, ok := match(content, zones); ok {
			c.apply(rec)
			return rec
		}
	}

	rec.Event = "Other"
	rec.Message = content
	return rec
}

// classification is the result of exactly one matcher. Zero-value fields
// other than event and message stay absent on the record.
type classification struct {
	event     string
	zone      *int
	zoneName  string
	message   string
	partition *int
	user      *int
}

func (c classification) apply(rec *models.EventRecord) {
	rec.Event = c.event
	rec.Zone = c.zone
	rec.ZoneName = c.zoneName
	rec.Message = c.message
	rec.Partition = c.partition
	rec.User = c.user
}

type matcher func(content string, zones Directory) (classification, bool)

// matchers is the dispatch order. Each message matches at most one shape;
// the first hit wins and nothing after it runs.
var matchers = []matcher{
	matchZoneEvent,
	matchArmState,
	matchContactID,
}

// vendorMarkers are the product and model tags the network module prepends
// when it does not emit a full syslog TAG[PID]: preamble.
var vendorMarkers = []string{
	"ENVISALINK",
	"EnvisaLink",
	"Envisalink",
	"envisalink",
	"EVL4",
	"evl4",
}

// stripHeader isolates the message content from syslog or vendor framing.
// It never fails; input without a recognizable header passes through whole.
func stripHeader(raw string) string {
	if idx := strings.Index(raw, "]: "); idx >= 0 {
		return raw[idx+3:]
	}
	for _, marker := range vendorMarkers {
		if idx := strings.Index(raw, marker); idx >= 0 {
			rest := raw[idx+len(marker):]
			return strings.TrimLeft(rest, ":[] \t")
		}
	}
	return raw
}

var zoneEventRe = regexp.MustCompile(`(?i)\bzone\s+([a-z]+)\s*:\s*(\d+)`)

// zoneActions is a literal table of the recognized action words, normalized
// to present tense. Deliberately not a generic suffix rule: the panel only
// ever emits these verbs.
var zoneActions = map[string]string{
	"open":     "Open",
	"opened":   "Open",
	"close":    "Close",
	"closed":   "Close",
	"alarm":    "Alarm",
	"trouble":  "Trouble",
	"tamper":   "Tamper",
	"restore":  "Restore",
	"restored": "Restore",
}

// matchZoneEvent recognizes the "Zone <Action>: NNN" dialect. Leading zeros
// on the zone number are discarded.
func matchZoneEvent(content string, zones Directory) (classification, bool) {
	m := zoneEventRe.FindStringSubmatch(content)
	if m == nil {
		return classification{}, false
	}
	action, ok := zoneActions[strings.ToLower(m[1])]
	if !ok {
		return classification{}, false
	}
	zone, err := strconv.Atoi(m[2])
	if err != nil {
		return classification{}, false
	}
	z := zone
	return classification{
		event:    "Zone " + action,
		zone:     &z,
		zoneName: zones.Name(zone),
		message:  content,
	}, true
}

// matchArmState recognizes free-text alarm and arm/disarm phrasing. Alarm is
// checked first: "alarm" contains "arm", and the reverse order would turn
// every alarm into an arming event.
func matchArmState(content string, _ Directory) (classification, bool) {
	lower := strings.ToLower(content)
	if strings.Contains(lower, "alarm") {
		return classification{event: "Alarm", message: content}, true
	}
	if !strings.Contains(lower, "arm") {
		return classification{}, false
	}

	var event string
	switch {
	case strings.Contains(lower, "disarm"):
		event = "Disarmed"
	case strings.Contains(lower, "stay"):
		event = "Armed Stay"
	case strings.Contains(lower, "away"):
		event = "Armed Away"
	case strings.Contains(lower, "night"), strings.Contains(lower, "instant"):
		event = "Armed Night"
	default:
		event = "Armed"
	}
	return classification{event: event, message: content}, true
}

var cidEventRe = regexp.MustCompile(`(?i)\bCID\s+Event:\s*(\d+)`)

// matchContactID detects an embedded Contact ID report and decodes it.
// Truncated digit runs fall through to the "Other" event. The annotation
// omits partition and user when they are zero; a real value of 0 is
// indistinguishable from "not present", which matches observed panel
// behavior.
func matchContactID(content string, _ Directory) (classification, bool) {
	m := cidEventRe.FindStringSubmatch(content)
	if m == nil {
		return classification{}, false
	}
	cid, ok := decodeContactID(m[1])
	if !ok {
		return classification{}, false
	}

	detail := cid.Description()
	if cid.Partition != 0 {
		detail += fmt.Sprintf(", partition %d", cid.Partition)
	}
	if cid.ZoneUser != 0 {
		detail += fmt.Sprintf(", user %d", cid.ZoneUser)
	}

	partition := cid.Partition
	user := cid.ZoneUser
	return classification{
		event:     cid.EventLabel(),
		message:   content + " (" + detail + ")",
		partition: &partition,
		user:      &user,
	}, true
}
