package rules

import "panelwatch/pkg/models"

// Engine applies notification rules to classified events.
type Engine interface {
	Apply(rec *models.EventRecord) []models.RuleTag
}

// NoopEngine returns no tags.
type NoopEngine struct{}

// Apply returns an empty tag list.
func (n *NoopEngine) Apply(rec *models.EventRecord) []models.RuleTag {
	return nil
}
