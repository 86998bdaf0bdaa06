package models

import "time"

// EventRecord is the structured result of classifying one panel datagram.
// It is created once per inbound message, handed to every sink, and never
// mutated after the rule engine has tagged it.
type EventRecord struct {
	Timestamp time.Time `json:"@timestamp"`
	Raw       string    `json:"raw"`
	Event     string    `json:"event"`
	Zone      *int      `json:"zone,omitempty"`
	ZoneName  string    `json:"zone_name,omitempty"`
	Message   string    `json:"message"`
	Partition *int      `json:"partition,omitempty"`
	User      *int      `json:"user,omitempty"`
	RuleTags  []RuleTag `json:"rule_tags,omitempty"`
}

// FieldMap flattens the record into the shape the rule engine evaluates.
// Optional fields are included only when present so rules can test existence.
func (e *EventRecord) FieldMap() map[string]interface{} {
	if e == nil {
		return nil
	}
	m := map[string]interface{}{
		"Event":   e.Event,
		"Message": e.Message,
		"Raw":     e.Raw,
	}
	if e.Zone != nil {
		m["Zone"] = *e.Zone
	}
	if e.ZoneName != "" {
		m["ZoneName"] = e.ZoneName
	}
	if e.Partition != nil {
		m["Partition"] = *e.Partition
	}
	if e.User != nil {
		m["User"] = *e.User
	}
	return m
}

// RuleTag annotates a record with a matched notification rule.
type RuleTag struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Severity string `json:"severity,omitempty"`
}
