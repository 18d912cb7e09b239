package domain

// ProgressionStep is one difficulty rung of a template.
type ProgressionStep struct {
	Key         string   `yaml:"key" json:"key"`
	Reps        int      `yaml:"reps" json:"reps"`
	RepMiles    float64  `yaml:"rep_miles" json:"rep_miles,omitempty"`
	RepMinutes  float64  `yaml:"rep_minutes" json:"rep_minutes,omitempty"`
	RecoveryMin float64  `yaml:"recovery_min" json:"recovery_min,omitempty"`
	Zone        PaceZone `yaml:"zone" json:"zone"`
}

// TemplateConstraints are hard requirements a slot must satisfy.
type TemplateConstraints struct {
	MinMinutes int      `yaml:"min_minutes" json:"min_minutes,omitempty"`
	Facility   Facility `yaml:"facility" json:"facility,omitempty"`
}

// WorkoutTemplate is static registry data. Generation never mutates it.
type WorkoutTemplate struct {
	ID            string              `yaml:"id" json:"id"`
	Name          string              `yaml:"name" json:"name"`
	Type          IntensityType       `yaml:"type" json:"type"`
	IntensityTier int                 `yaml:"intensity_tier" json:"intensity_tier"`
	Phases        []PhaseType         `yaml:"phases" json:"phases"`
	Steps         []ProgressionStep   `yaml:"steps" json:"steps"`
	VarianceTags  []string            `yaml:"variance_tags" json:"variance_tags,omitempty"`
	Constraints   TemplateConstraints `yaml:"constraints" json:"constraints"`
	DontFollow    []string            `yaml:"dont_follow" json:"dont_follow,omitempty"`
}

// CompatibleWith reports whether the template may be used in phase.
func (t WorkoutTemplate) CompatibleWith(phase PhaseType) bool {
	for _, p := range t.Phases {
		if p == phase {
			return true
		}
	}
	return false
}

// Forbids reports whether t may not follow the template with id prev.
func (t WorkoutTemplate) Forbids(prev string) bool {
	for _, id := range t.DontFollow {
		if id == prev {
			return true
		}
	}
	return false
}
