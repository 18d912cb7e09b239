package plans

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
	"github.com/Nmdk1/StrideIQ-sub003/internal/templates"
)

// Request is the wire form of a generation request, shared by the HTTP API,
// the job queue and the CLI.
type Request struct {
	Distance    string `json:"distance"`
	Weeks       int    `json:"weeks"`
	Tier        string `json:"tier"`
	DaysPerWeek int    `json:"days_per_week"`
	// GoalDate is a calendar date, YYYY-MM-DD.
	GoalDate string `json:"goal_date,omitempty"`
	// GoalTime is H:MM:SS, MM:SS or a Go duration like 3h30m.
	GoalTime string `json:"goal_time,omitempty"`

	AvailableMinutes int      `json:"available_minutes,omitempty"`
	Facilities       []string `json:"facilities,omitempty"`
	ExcludeTypes     []string `json:"exclude_types,omitempty"`
}

// Spec converts the request into domain values. Malformed fields wrap
// domain.ErrInvalidInput; range checks are left to PlanSpec.Validate.
func (r Request) Spec() (domain.PlanSpec, templates.Constraints, error) {
	spec := domain.PlanSpec{
		Distance:    domain.Distance(strings.ToLower(strings.TrimSpace(r.Distance))),
		Weeks:       r.Weeks,
		Tier:        domain.Tier(strings.ToLower(strings.TrimSpace(r.Tier))),
		DaysPerWeek: r.DaysPerWeek,
	}
	if r.GoalDate != "" {
		d, err := time.Parse(time.DateOnly, r.GoalDate)
		if err != nil {
			return domain.PlanSpec{}, templates.Constraints{}, fmt.Errorf("%w: goal_date %q: want YYYY-MM-DD", domain.ErrInvalidInput, r.GoalDate)
		}
		spec.GoalDate = d
	}
	if r.GoalTime != "" {
		gt, err := ParseGoalTime(r.GoalTime)
		if err != nil {
			return domain.PlanSpec{}, templates.Constraints{}, err
		}
		spec.GoalTime = gt
	}

	c := templates.Constraints{AvailableMinutes: r.AvailableMinutes}
	if r.AvailableMinutes < 0 {
		return domain.PlanSpec{}, templates.Constraints{}, fmt.Errorf("%w: available_minutes must not be negative", domain.ErrInvalidInput)
	}
	if r.Facilities != nil {
		c.Facilities = make([]domain.Facility, 0, len(r.Facilities))
		for _, f := range r.Facilities {
			facility := domain.Facility(strings.ToLower(strings.TrimSpace(f)))
			if !facility.Valid() {
				return domain.PlanSpec{}, templates.Constraints{}, fmt.Errorf("%w: unknown facility %q", domain.ErrInvalidInput, f)
			}
			c.Facilities = append(c.Facilities, facility)
		}
	}
	for _, t := range r.ExcludeTypes {
		it := domain.IntensityType(strings.ToLower(strings.TrimSpace(t)))
		if !it.Valid() {
			return domain.PlanSpec{}, templates.Constraints{}, fmt.Errorf("%w: unknown workout type %q in exclude_types", domain.ErrInvalidInput, t)
		}
		c.ExcludeTypes = append(c.ExcludeTypes, it)
	}
	return spec, c, nil
}

// ParseGoalTime accepts H:MM:SS, MM:SS or a Go duration string.
func ParseGoalTime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ":") {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return 0, fmt.Errorf("%w: goal_time %q", domain.ErrInvalidInput, s)
		}
		return d, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: goal_time %q", domain.ErrInvalidInput, s)
	}
	var total time.Duration
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || (i > 0 && n >= 60) {
			return 0, fmt.Errorf("%w: goal_time %q", domain.ErrInvalidInput, s)
		}
		total = total*60 + time.Duration(n)
	}
	total *= time.Second
	if total <= 0 {
		return 0, fmt.Errorf("%w: goal_time %q", domain.ErrInvalidInput, s)
	}
	return total, nil
}
