package templates

import (
	"testing"

	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
)

func tmpl(id string, typ domain.IntensityType, phases ...domain.PhaseType) domain.WorkoutTemplate {
	return domain.WorkoutTemplate{
		ID:     id,
		Name:   id,
		Type:   typ,
		Phases: phases,
		Steps: []domain.ProgressionStep{
			{Key: id + "-1", Reps: 3, RepMiles: 1, Zone: domain.PaceThreshold},
			{Key: id + "-2", Reps: 4, RepMiles: 1, Zone: domain.PaceThreshold},
			{Key: id + "-3", Reps: 5, RepMiles: 1, Zone: domain.PaceThreshold},
		},
	}
}

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()
	if registry == nil {
		t.Fatal("NewRegistry should not return nil")
	}

	if ids := registry.List(); len(ids) != 0 {
		t.Errorf("New registry should be empty, got %d templates: %v", len(ids), ids)
	}
}

func TestRegisterAndGetTemplate(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(tmpl("tempo", domain.IntensityThreshold, domain.PhaseThreshold)); err != nil {
		t.Fatalf("Register tempo: %v", err)
	}
	if err := registry.Register(tmpl("cruise", domain.IntensityThreshold, domain.PhaseThreshold, domain.PhasePeak)); err != nil {
		t.Fatalf("Register cruise: %v", err)
	}

	ids := registry.List()
	if len(ids) != 2 || ids[0] != "cruise" || ids[1] != "tempo" {
		t.Errorf("Expected [cruise tempo], got %v", ids)
	}

	got, ok := registry.Template("tempo")
	if !ok {
		t.Fatal("tempo template should exist")
	}
	if got.ID != "tempo" {
		t.Errorf("Expected template id 'tempo', got '%s'", got.ID)
	}

	if _, ok := registry.Template("nonexistent"); ok {
		t.Error("Non-existent template should not exist")
	}

	peak := registry.TemplatesForPhase(domain.PhasePeak)
	if len(peak) != 1 || peak[0].ID != "cruise" {
		t.Errorf("Expected only cruise for peak, got %v", peak)
	}
}

func TestRegistryOverwrite(t *testing.T) {
	registry := NewRegistry()

	first := tmpl("test", domain.IntensityThreshold, domain.PhaseThreshold)
	second := tmpl("test", domain.IntensityIntervals, domain.PhaseIntervals)
	_ = registry.Register(first)
	_ = registry.Register(second)

	if registry.Len() != 1 {
		t.Errorf("Expected 1 template after overwrite, got %d", registry.Len())
	}
	got, _ := registry.Template("test")
	if got.Type != domain.IntensityIntervals {
		t.Error("Should get the second registered template")
	}
}

func TestRegisterRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		t    domain.WorkoutTemplate
	}{
		{"no id", tmpl("", domain.IntensityThreshold, domain.PhaseThreshold)},
		{"unknown type", tmpl("x", "sprint", domain.PhaseThreshold)},
		{"no phases", tmpl("x", domain.IntensityThreshold)},
		{"unknown phase", tmpl("x", domain.IntensityThreshold, "offseason")},
		{"marathon pace in base", tmpl("x", domain.IntensityMarathonPace, domain.PhaseBase)},
		{"no steps", domain.WorkoutTemplate{ID: "x", Type: domain.IntensityThreshold, Phases: []domain.PhaseType{domain.PhaseThreshold}}},
		{"empty step", domain.WorkoutTemplate{ID: "x", Type: domain.IntensityThreshold, Phases: []domain.PhaseType{domain.PhaseThreshold},
			Steps: []domain.ProgressionStep{{Key: "a", Reps: 1}}}},
		{"duplicate step", domain.WorkoutTemplate{ID: "x", Type: domain.IntensityThreshold, Phases: []domain.PhaseType{domain.PhaseThreshold},
			Steps: []domain.ProgressionStep{{Key: "a", Reps: 1, RepMiles: 1}, {Key: "a", Reps: 2, RepMiles: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewRegistry().Register(tt.t); err == nil {
				t.Errorf("Expected %s to be rejected", tt.name)
			}
		})
	}
}
