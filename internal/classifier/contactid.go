package classifier

import "strconv"

// contactID is a decoded Ademco Contact ID report: a fixed-width digit run
// of qualifier (1), event code (3), partition (2), zone-or-user (3). A tenth
// digit, when present, is a checksum and is ignored.
type contactID struct {
	Qualifier byte   // '1' new event / opening, '3' restore / closing
	Code      string // zero-padded 3-digit event code
	Partition int
	ZoneUser  int
}

const (
	qualifierNew     = '1'
	qualifierRestore = '3'
)

// decodeContactID splits a digit run into Contact ID fields. Runs shorter
// than nine digits cannot be decoded.
func decodeContactID(digits string) (contactID, bool) {
	if len(digits) < 9 {
		return contactID{}, false
	}
	partition, _ := strconv.Atoi(digits[4:6])
	zoneUser, _ := strconv.Atoi(digits[6:9])
	return contactID{
		Qualifier: digits[0],
		Code:      digits[1:4],
		Partition: partition,
		ZoneUser:  zoneUser,
	}, true
}

// armCodes is the open/close family of event codes. Qualifier decides the
// direction: '1' means disarmed, '3' means armed.
var armCodes = map[string]bool{
	"400": true, "401": true, "403": true,
	"407": true, "408": true, "409": true,
	"441": true, "442": true, "443": true,
}

// cidDescriptions maps known Contact ID event codes to short phrases.
// Codes outside the table still decode structurally; only the description
// and event label fall back to generic forms.
var cidDescriptions = map[string]string{
	// Alarms.
	"100": "Medical Alarm",
	"110": "Fire Alarm",
	"115": "Fire Alarm (pull station)",
	"120": "Panic Alarm",
	"121": "Duress Alarm",
	"130": "Burglary Alarm",
	"131": "Perimeter Alarm",
	"132": "Interior Alarm",
	"134": "Entry/Exit Alarm",
	"137": "Tamper Alarm",
	"140": "General Alarm",

	// Supervisory and trouble.
	"301": "AC Power Loss",
	"302": "Low System Battery",
	"305": "System Reset",
	"350": "Communication Failure",
	"373": "Fire Sensor Trouble",
	"380": "Sensor Trouble",
	"381": "Loss of Sensor Supervision",
	"383": "Sensor Tamper",

	// Open/close.
	"400": "Open/Close",
	"401": "Open/Close by User",
	"403": "Automatic Open/Close",
	"407": "Remote Arm/Disarm",
	"408": "Quick Arm",
	"409": "Keyswitch Open/Close",
	"441": "Armed Stay/Disarmed",
	"442": "Armed Away/Disarmed",
	"443": "Armed Night/Disarmed",

	// Tests.
	"601": "Manual Test",
	"602": "Periodic Test",
	"616": "Service Request",
}

// EventLabel maps the decoded report to an event label. Arm-family codes are
// resolved by qualifier, the 100 band is always an alarm, and everything else
// falls back to the description table or a generic "CID NNN" label.
func (c contactID) EventLabel() string {
	if armCodes[c.Code] {
		switch c.Qualifier {
		case qualifierNew:
			return "Disarmed"
		case qualifierRestore:
			switch c.Code {
			case "441":
				return "Armed Stay"
			case "442":
				return "Armed Away"
			case "443":
				return "Armed Night"
			}
			return "Armed"
		}
		// Unexpected qualifier: fall through to the table lookup.
	} else if n, err := strconv.Atoi(c.Code); err == nil && n >= 100 && n < 200 {
		return "Alarm"
	}
	if desc, ok := cidDescriptions[c.Code]; ok {
		return desc
	}
	return "CID " + c.Code
}

// Description returns the table phrase for the event code, or a generic
// placeholder for codes not in the table.
func (c contactID) Description() string {
	if desc, ok := cidDescriptions[c.Code]; ok {
		return desc
	}
	return "Unknown (" + c.Code + ")"
}
