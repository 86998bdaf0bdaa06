package classifier

import (
	"strconv"
	"strings"
)

// Directory maps zone numbers, as decimal text, to friendly names.
// Keys compare by integer value, so "09" and "9" name the same zone.
type Directory map[string]string

// Name resolves a zone number to its friendly name. Unknown zones get the
// fallback "Zone N". Safe on a nil or empty directory.
func (d Directory) Name(zone int) string {
	key := strconv.Itoa(zone)
	if name, ok := d[key]; ok && name != "" {
		return name
	}
	for k, v := range d {
		if v == "" {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(k)); err == nil && n == zone {
			return v
		}
	}
	return "Zone " + key
}

// ResolveZoneName resolves a numeric-string zone identifier. Identifiers that
// do not parse as an integer still yield a usable label.
func ResolveZoneName(zones Directory, id string) string {
	id = strings.TrimSpace(id)
	if n, err := strconv.Atoi(id); err == nil {
		return zones.Name(n)
	}
	return "Zone " + id
}
