// Package templates holds the read-only quality-workout catalog and the
// deterministic selector that picks from it.
package templates

import (
	"fmt"
	"sort"

	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
)

// Repository is the read-only view of the catalog the selector needs.
type Repository interface {
	// TemplatesForPhase returns the templates compatible with phase,
	// ordered by id.
	TemplatesForPhase(phase domain.PhaseType) []domain.WorkoutTemplate

	// Template looks a template up by id.
	Template(id string) (domain.WorkoutTemplate, bool)
}

// Registry is an in-memory Repository. Fill it with Register before sharing
// it; after that it is never mutated and is safe for concurrent readers.
type Registry struct {
	templates map[string]domain.WorkoutTemplate
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		templates: make(map[string]domain.WorkoutTemplate),
	}
}

// Register adds a template, replacing any template with the same id.
func (r *Registry) Register(t domain.WorkoutTemplate) error {
	if err := validate(t); err != nil {
		return err
	}
	r.templates[t.ID] = t
	return nil
}

// Template retrieves a template by id.
func (r *Registry) Template(id string) (domain.WorkoutTemplate, bool) {
	t, ok := r.templates[id]
	return t, ok
}

// List returns all registered template ids in order.
func (r *Registry) List() []string {
	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len is the number of registered templates.
func (r *Registry) Len() int { return len(r.templates) }

// TemplatesForPhase returns phase-compatible templates ordered by id.
func (r *Registry) TemplatesForPhase(phase domain.PhaseType) []domain.WorkoutTemplate {
	var out []domain.WorkoutTemplate
	for _, id := range r.List() {
		if t := r.templates[id]; t.CompatibleWith(phase) {
			out = append(out, t)
		}
	}
	return out
}

func validate(t domain.WorkoutTemplate) error {
	if t.ID == "" {
		return fmt.Errorf("template without id")
	}
	if !t.Type.Valid() {
		return fmt.Errorf("template %s: unknown type %q", t.ID, t.Type)
	}
	if len(t.Phases) == 0 {
		return fmt.Errorf("template %s: no compatible phases", t.ID)
	}
	for _, p := range t.Phases {
		if !p.Valid() {
			return fmt.Errorf("template %s: unknown phase %q", t.ID, p)
		}
		if p == domain.PhaseBase && t.Type == domain.IntensityMarathonPace {
			return fmt.Errorf("template %s: marathon-pace work cannot run in base", t.ID)
		}
	}
	if len(t.Steps) == 0 {
		return fmt.Errorf("template %s: no progression steps", t.ID)
	}
	seen := make(map[string]bool, len(t.Steps))
	for _, s := range t.Steps {
		if s.Key == "" || seen[s.Key] {
			return fmt.Errorf("template %s: missing or duplicate step key %q", t.ID, s.Key)
		}
		seen[s.Key] = true
		if s.Reps < 1 || (s.RepMiles <= 0 && s.RepMinutes <= 0) {
			return fmt.Errorf("template %s step %s: needs reps and a rep distance or duration", t.ID, s.Key)
		}
	}
	return nil
}
