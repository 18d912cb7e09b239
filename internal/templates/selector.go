package templates

import (
	"fmt"
	"math"

	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
)

// Stage names as they appear in the audit trail.
const (
	StagePhase      = "phase"
	StageConstraint = "constraints"
	StageDontFollow = "dont_follow"
	StageType       = "type"
	StageDontRepeat = "dont_repeat"
)

// Defaults for Options.
const (
	DefaultDontRepeatWindow   = 3
	DefaultDontFollowLookback = 1
)

// allowlists are the intensity types each phase may draw from, in
// rotation order.
var allowlists = map[domain.PhaseType][]domain.IntensityType{
	domain.PhaseBase:         {domain.IntensityStrides, domain.IntensityHills, domain.IntensityFartlek},
	domain.PhaseThreshold:    {domain.IntensityThreshold, domain.IntensityIntervals},
	domain.PhaseMarathonPace: {domain.IntensityMarathonPace, domain.IntensityThreshold},
	domain.PhaseIntervals:    {domain.IntensityIntervals, domain.IntensityThreshold},
	domain.PhaseRecovery:     {domain.IntensityStrides, domain.IntensityFartlek},
	domain.PhasePeak:         {domain.IntensityThreshold, domain.IntensityIntervals, domain.IntensityMarathonPace},
	domain.PhaseTaper:        {domain.IntensitySharpener, domain.IntensityThreshold},
	domain.PhaseRace:         {domain.IntensitySharpener},
}

// Allowlist returns the intensity types phase may use.
func Allowlist(phase domain.PhaseType) []domain.IntensityType {
	out := make([]domain.IntensityType, len(allowlists[phase]))
	copy(out, allowlists[phase])
	return out
}

// Constraints are the runtime limits of one quality slot.
type Constraints struct {
	// AvailableMinutes is zero when the slot has no time limit.
	AvailableMinutes int
	// Facilities lists what the athlete can reach. Nil means no limit.
	Facilities   []domain.Facility
	ExcludeTypes []domain.IntensityType
}

func (c Constraints) allows(t domain.WorkoutTemplate) bool {
	if c.AvailableMinutes > 0 && t.Constraints.MinMinutes > c.AvailableMinutes {
		return false
	}
	if f := t.Constraints.Facility; f != domain.FacilityNone && c.Facilities != nil {
		found := false
		for _, have := range c.Facilities {
			if have == f {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, x := range c.ExcludeTypes {
		if t.Type == x {
			return false
		}
	}
	return true
}

// Request is one selection call.
type Request struct {
	Phase       domain.PhaseType
	WeekInPhase int
	PhaseWeeks  int
	// Recent holds previously used template ids, most recent last.
	Recent      []string
	Constraints Constraints
}

// Options tune the anti-repetition windows.
type Options struct {
	DontRepeatWindow   int
	DontFollowLookback int
}

// Selection is the selector's answer. Audit is filled even on error.
type Selection struct {
	Template domain.WorkoutTemplate
	Step     domain.ProgressionStep
	Audit    domain.SelectionAudit
}

// Selector picks quality templates. It holds no mutable state; Select is a
// pure function of the request and the repository contents.
type Selector struct {
	repo Repository
	opts Options
}

// NewSelector returns a selector over repo. Zero options take the defaults.
func NewSelector(repo Repository, opts Options) *Selector {
	if opts.DontRepeatWindow <= 0 {
		opts.DontRepeatWindow = DefaultDontRepeatWindow
	}
	if opts.DontFollowLookback <= 0 {
		opts.DontFollowLookback = DefaultDontFollowLookback
	}
	return &Selector{repo: repo, opts: opts}
}

// Select runs the pipeline: phase, hard constraints, don't-follow, type
// choice, don't-repeat, then the progression step.
func (s *Selector) Select(req Request) (Selection, error) {
	audit := domain.SelectionAudit{
		Phase:       req.Phase,
		WeekInPhase: req.WeekInPhase,
		PhaseWeeks:  req.PhaseWeeks,
		Allowlist:   Allowlist(req.Phase),
	}
	if !req.Phase.Valid() {
		return Selection{Audit: audit}, fmt.Errorf("%w: unknown phase %q", domain.ErrInvalidInput, req.Phase)
	}

	cands := s.repo.TemplatesForPhase(req.Phase)
	audit.Stages = append(audit.Stages, domain.StageTrace{
		Stage: StagePhase,
		After: len(cands),
	})
	if len(cands) == 0 {
		return Selection{Audit: audit}, fmt.Errorf("%w: no templates for phase %s", domain.ErrTemplateUnavailable, req.Phase)
	}

	cands, trace := filterConstraints(cands, req.Constraints)
	audit.Stages = append(audit.Stages, trace)
	if len(cands) == 0 {
		return Selection{Audit: audit}, fmt.Errorf("%w: constraints exclude every %s template", domain.ErrTemplateUnavailable, req.Phase)
	}

	cands, trace = filterDontFollow(cands, tail(req.Recent, s.opts.DontFollowLookback))
	audit.Stages = append(audit.Stages, trace)
	audit.DontFollowRelaxed = trace.Relaxed

	audit.PreviousType = s.previousType(req.Recent)
	cands, trace, chosen := chooseType(cands, audit.Allowlist, audit.PreviousType)
	audit.Stages = append(audit.Stages, trace)
	audit.ChosenType = chosen
	if len(cands) == 0 {
		return Selection{Audit: audit}, fmt.Errorf("%w: no %s template in allowlist", domain.ErrTemplateUnavailable, req.Phase)
	}

	cands, trace = filterDontRepeat(cands, tail(req.Recent, s.opts.DontRepeatWindow))
	audit.Stages = append(audit.Stages, trace)
	audit.DontRepeatWindowRelaxed = trace.Relaxed

	// Candidates stay in id order, so the first one is the fixed tie-break.
	t := cands[0]
	step := t.Steps[StepIndex(req.WeekInPhase, req.PhaseWeeks, len(t.Steps))]
	audit.TemplateID = t.ID
	audit.StepKey = step.Key
	return Selection{Template: t, Step: step, Audit: audit}, nil
}

func (s *Selector) previousType(recent []string) domain.IntensityType {
	if len(recent) == 0 {
		return ""
	}
	if t, ok := s.repo.Template(recent[len(recent)-1]); ok {
		return t.Type
	}
	return ""
}

func filterConstraints(cands []domain.WorkoutTemplate, c Constraints) ([]domain.WorkoutTemplate, domain.StageTrace) {
	trace := domain.StageTrace{Stage: StageConstraint, Before: len(cands)}
	var out []domain.WorkoutTemplate
	for _, t := range cands {
		if c.allows(t) {
			out = append(out, t)
			continue
		}
		trace.Excluded = append(trace.Excluded, t.ID)
	}
	trace.After = len(out)
	return out, trace
}

func filterDontFollow(cands []domain.WorkoutTemplate, lookback []string) ([]domain.WorkoutTemplate, domain.StageTrace) {
	trace := domain.StageTrace{Stage: StageDontFollow, Before: len(cands)}
	var out []domain.WorkoutTemplate
	for _, t := range cands {
		forbidden := false
		for _, prev := range lookback {
			if t.Forbids(prev) {
				forbidden = true
				break
			}
		}
		if forbidden {
			trace.Excluded = append(trace.Excluded, t.ID)
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		trace.Relaxed = true
		trace.Note = "every candidate forbidden after recent sessions"
		trace.After = len(cands)
		return cands, trace
	}
	trace.After = len(out)
	return out, trace
}

// chooseType keeps templates of one allowlisted type. When more than one
// type survives it takes the next type after prev in allowlist order.
func chooseType(cands []domain.WorkoutTemplate, allow []domain.IntensityType, prev domain.IntensityType) ([]domain.WorkoutTemplate, domain.StageTrace, domain.IntensityType) {
	trace := domain.StageTrace{Stage: StageType, Before: len(cands)}

	present := make(map[domain.IntensityType]bool)
	for _, t := range cands {
		present[t.Type] = true
	}
	var surviving []domain.IntensityType
	for _, it := range allow {
		if present[it] {
			surviving = append(surviving, it)
		}
	}

	var chosen domain.IntensityType
	switch len(surviving) {
	case 0:
	case 1:
		chosen = surviving[0]
	default:
		chosen = surviving[0]
		for i, it := range surviving {
			if it == prev {
				chosen = surviving[(i+1)%len(surviving)]
				break
			}
		}
		trace.Note = fmt.Sprintf("%d types survived, previous %q", len(surviving), prev)
	}

	var out []domain.WorkoutTemplate
	for _, t := range cands {
		if chosen != "" && t.Type == chosen {
			out = append(out, t)
			continue
		}
		trace.Excluded = append(trace.Excluded, t.ID)
	}
	trace.After = len(out)
	return out, trace, chosen
}

// filterDontRepeat drops templates used inside the window. If that leaves
// nothing, the window is relaxed in one step.
func filterDontRepeat(cands []domain.WorkoutTemplate, window []string) ([]domain.WorkoutTemplate, domain.StageTrace) {
	trace := domain.StageTrace{Stage: StageDontRepeat, Before: len(cands)}
	used := make(map[string]bool, len(window))
	for _, id := range window {
		used[id] = true
	}
	var out []domain.WorkoutTemplate
	for _, t := range cands {
		if used[t.ID] {
			trace.Excluded = append(trace.Excluded, t.ID)
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		trace.Relaxed = true
		trace.Note = fmt.Sprintf("window of %d exhausted every candidate", len(window))
		trace.After = len(cands)
		return cands, trace
	}
	trace.After = len(out)
	return out, trace
}

// StepIndex maps week position within a phase onto one of n ordered steps:
// early weeks get easier steps.
func StepIndex(weekInPhase, phaseWeeks, n int) int {
	if n <= 0 {
		return 0
	}
	if phaseWeeks <= 0 {
		phaseWeeks = 1
	}
	i := int(math.Ceil(float64(weekInPhase)/float64(phaseWeeks)*float64(n))) - 1
	return max(0, min(i, n-1))
}

func tail(ids []string, n int) []string {
	if len(ids) <= n {
		return ids
	}
	return ids[len(ids)-n:]
}
