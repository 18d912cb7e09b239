// Package render prints plans as plain-text tables for the CLI.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
)

// Summary prints the plan header and phase layout.
func Summary(w io.Writer, p *domain.Plan) {
	fmt.Fprintf(w, "Plan %s\n", p.ID)
	fmt.Fprintf(w, "%s | %d weeks | %s tier | %d days/week\n", p.Spec.Distance, p.Spec.Weeks, p.Spec.Tier, p.Spec.DaysPerWeek)
	if !p.Spec.GoalDate.IsZero() {
		fmt.Fprintf(w, "Race day: %s\n", p.Spec.GoalDate.Format("Mon 2 Jan 2006"))
	}
	fmt.Fprintf(w, "Peak %.1f mi | Total %.1f mi | Easy %.0f%%\n\n", p.PeakVolume, p.TotalMiles, 100*p.EasyShare())

	fmt.Fprintln(w, "Phase | Weeks")
	fmt.Fprintln(w, "------|------")
	for _, ph := range p.Phases {
		fmt.Fprintf(w, "%s | %d-%d\n", ph.Type, ph.StartWeek, ph.EndWeek)
	}
	fmt.Fprintln(w)
}

// Weeks prints one row per week: theme, volume and the quality sessions.
func Weeks(w io.Writer, p *domain.Plan) {
	fmt.Fprintln(w, "Week | Phase | Theme | Miles | Long | Quality")
	fmt.Fprintln(w, "-----|-------|-------|-------|------|--------")
	for i, th := range p.Themes {
		var (
			phase   domain.PhaseType
			long    = "—"
			quality []string
		)
		for _, wo := range p.Week(th.Week) {
			phase = wo.Phase
			switch {
			case wo.Type == domain.WorkoutLong:
				long = fmt.Sprintf("%.1f", wo.DistanceMi)
			case wo.IsQuality():
				quality = append(quality, label(wo))
			}
		}
		q := "—"
		if len(quality) > 0 {
			q = strings.Join(quality, ", ")
		}
		miles := 0.0
		if i < len(p.WeeklyVolumes) {
			miles = p.WeeklyVolumes[i]
		}
		fmt.Fprintf(w, "%d | %s | %s | %.1f | %s | %s\n", th.Week, phase, th.Theme, miles, long, q)
	}
	fmt.Fprintln(w)
}

// Week prints every day of one week.
func Week(w io.Writer, p *domain.Plan, week int) {
	fmt.Fprintf(w, "Week %d\n", week)
	fmt.Fprintln(w, "Day | Date | Workout | Miles | Pace | Notes")
	fmt.Fprintln(w, "----|------|---------|-------|------|------")
	for _, wo := range p.Week(week) {
		date := "—"
		if !wo.Date.IsZero() {
			date = wo.Date.Format("Mon 02 Jan")
		}
		miles, pace := "—", "—"
		if wo.Type != domain.WorkoutRest {
			miles = fmt.Sprintf("%.1f", wo.DistanceMi)
		}
		if wo.Pace != "" {
			pace = wo.Pace
		}
		fmt.Fprintf(w, "%d | %s | %s | %s | %s | %s\n", wo.Day, date, label(wo), miles, pace, wo.Notes)
		for _, s := range wo.Segments {
			fmt.Fprintf(w, "    - %s\n", segment(s))
		}
	}
	fmt.Fprintln(w)
}

// Audits prints the selector's decision for each quality slot.
func Audits(w io.Writer, p *domain.Plan) {
	fmt.Fprintln(w, "Week | Day | Phase | Type | Template | Relaxed")
	fmt.Fprintln(w, "-----|-----|-------|------|----------|--------")
	for _, a := range p.Audits {
		tmpl := a.TemplateID
		if a.Placeholder {
			tmpl = "(placeholder)"
		}
		var relaxed []string
		if a.DontFollowRelaxed {
			relaxed = append(relaxed, "dont-follow")
		}
		if a.DontRepeatWindowRelaxed {
			relaxed = append(relaxed, "dont-repeat")
		}
		r := "—"
		if len(relaxed) > 0 {
			r = strings.Join(relaxed, ", ")
		}
		fmt.Fprintf(w, "%d | %d | %s | %s | %s | %s\n", a.Week, a.Day, a.Phase, a.ChosenType, tmpl, r)
	}
	if len(p.Degradations) > 0 {
		fmt.Fprintln(w, "\nDegradations:")
		for _, d := range p.Degradations {
			fmt.Fprintf(w, "  week %d day %d: %s (%s)\n", d.Week, d.Day, d.Kind, d.Reason)
		}
	}
	fmt.Fprintln(w)
}

func label(wo domain.Workout) string {
	switch {
	case wo.TemplateID != "":
		return wo.TemplateID
	case wo.Subtype != "":
		return fmt.Sprintf("%s (%s)", wo.Type, wo.Subtype)
	}
	return string(wo.Type)
}

func segment(s domain.Segment) string {
	var b strings.Builder
	if s.Reps > 0 {
		fmt.Fprintf(&b, "%dx", s.Reps)
	}
	switch {
	case s.DistanceMi > 0:
		fmt.Fprintf(&b, "%s mi", trim(s.DistanceMi))
	case s.DurationMin > 0:
		fmt.Fprintf(&b, "%.0f min", s.DurationMin)
	}
	fmt.Fprintf(&b, " %s", s.Label)
	if s.Pace != "" {
		fmt.Fprintf(&b, " @ %s", s.Pace)
	}
	if s.RecoveryMin > 0 {
		fmt.Fprintf(&b, " (%.0f min jog)", s.RecoveryMin)
	}
	return strings.TrimSpace(b.String())
}

func trim(x float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", x), "0"), ".")
}
