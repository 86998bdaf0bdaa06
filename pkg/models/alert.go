package models

import "time"

// ZoneAlert reports a zone that has stayed open past a configured threshold.
type ZoneAlert struct {
	AlertID  string        `json:"alert_id"`
	Zone     int           `json:"zone"`
	ZoneName string        `json:"zone_name,omitempty"`
	Label    string        `json:"label,omitempty"`
	OpenedAt time.Time     `json:"opened_at"`
	At       time.Time     `json:"at"`
	Duration time.Duration `json:"duration"`
	Repeat   int           `json:"repeat"`
}
