package domain

// StageTrace is the outcome of one selector stage.
type StageTrace struct {
	Stage    string   `json:"stage"`
	Before   int      `json:"before"`
	After    int      `json:"after"`
	Excluded []string `json:"excluded,omitempty"`
	Relaxed  bool     `json:"relaxed,omitempty"`
	Note     string   `json:"note,omitempty"`
}

// SelectionAudit explains one quality-template decision.
type SelectionAudit struct {
	Week                    int             `json:"week,omitempty"`
	Day                     int             `json:"day,omitempty"`
	Phase                   PhaseType       `json:"phase"`
	WeekInPhase             int             `json:"week_in_phase"`
	PhaseWeeks              int             `json:"phase_weeks"`
	Allowlist               []IntensityType `json:"allowlist"`
	PreviousType            IntensityType   `json:"previous_type,omitempty"`
	ChosenType              IntensityType   `json:"chosen_type,omitempty"`
	Stages                  []StageTrace    `json:"stages"`
	DontFollowRelaxed       bool            `json:"dont_follow_relaxed"`
	DontRepeatWindowRelaxed bool            `json:"dont_repeat_window_relaxed"`
	TemplateID              string          `json:"template_id,omitempty"`
	StepKey                 string          `json:"step_key,omitempty"`
	Placeholder             bool            `json:"placeholder,omitempty"`
}

// Excluded returns the exclusion count recorded for a stage.
func (a SelectionAudit) Excluded(stage string) int {
	for _, s := range a.Stages {
		if s.Stage == stage {
			return len(s.Excluded)
		}
	}
	return 0
}
