// Package main provides the plangen CLI: generate and inspect training plans
// without a database.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Nmdk1/StrideIQ-sub003/internal/generator"
	"github.com/Nmdk1/StrideIQ-sub003/internal/plans"
	"github.com/Nmdk1/StrideIQ-sub003/internal/render"
	"github.com/Nmdk1/StrideIQ-sub003/internal/templates"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		catalog string
		verbose bool
	)
	root := &cobra.Command{
		Use:          "plangen",
		Short:        "Generate periodized running plans",
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&catalog, "catalog", "", "YAML template catalog (default: built-in)")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "log generator decisions to stderr")

	loadRegistry := func() (*templates.Registry, error) {
		if catalog != "" {
			return templates.LoadFile(catalog)
		}
		return templates.Default()
	}
	logger := func(cmd *cobra.Command) zerolog.Logger {
		if !verbose {
			return zerolog.Nop()
		}
		return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()
	}

	root.AddCommand(
		generateCmd(loadRegistry, logger),
		templatesCmd(loadRegistry),
	)
	return root
}

func generateCmd(loadRegistry func() (*templates.Registry, error), logger func(*cobra.Command) zerolog.Logger) *cobra.Command {
	var (
		req       plans.Request
		asJSON    bool
		week      int
		showAudit bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a plan and print it",
		Long: `Generate a plan and print it.

Examples:
  plangen generate --distance marathon --weeks 18 --tier mid --days 6
  plangen generate --distance half --weeks 12 --tier low --days 4 --goal-date 2027-04-25 --goal-time 1:45:00
  plangen generate --distance 10k --weeks 8 --tier high --days 6 --week 8
  plangen generate --distance 5k --weeks 6 --tier builder --days 3 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry()
			if err != nil {
				return err
			}
			spec, c, err := req.Spec()
			if err != nil {
				return err
			}
			gen := generator.New(reg, logger(cmd), generator.Options{})
			p, err := gen.Generate(generator.Request{Spec: spec, Constraints: c})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, p)
			}
			render.Summary(out, p)
			if week > 0 {
				if week > p.Spec.Weeks {
					return fmt.Errorf("week %d is outside a %d-week plan", week, p.Spec.Weeks)
				}
				render.Week(out, p, week)
			} else {
				render.Weeks(out, p)
			}
			if showAudit {
				render.Audits(out, p)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&req.Distance, "distance", "d", "", "race distance: 5k, 10k, half, marathon")
	f.IntVarP(&req.Weeks, "weeks", "w", 0, "plan length in weeks")
	f.StringVarP(&req.Tier, "tier", "t", "mid", "volume tier: builder, low, mid, high")
	f.IntVar(&req.DaysPerWeek, "days", 5, "running days per week")
	f.StringVar(&req.GoalDate, "goal-date", "", "race date, YYYY-MM-DD")
	f.StringVar(&req.GoalTime, "goal-time", "", "goal finish time, H:MM:SS")
	f.IntVar(&req.AvailableMinutes, "minutes", 0, "longest quality session that fits, in minutes")
	f.StringSliceVar(&req.Facilities, "facility", nil, "reachable facilities: track, hills, treadmill")
	f.StringSliceVar(&req.ExcludeTypes, "exclude", nil, "quality types to avoid")
	f.BoolVar(&asJSON, "json", false, "print the plan as JSON")
	f.IntVar(&week, "week", 0, "print the day-by-day schedule of one week")
	f.BoolVar(&showAudit, "audit", false, "print the template selection audit")
	_ = cmd.MarkFlagRequired("distance")
	_ = cmd.MarkFlagRequired("weeks")
	return cmd
}

func templatesCmd(loadRegistry func() (*templates.Registry, error)) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the workout template catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				var all []any
				for _, id := range reg.List() {
					t, _ := reg.Template(id)
					all = append(all, t)
				}
				return writeJSON(out, all)
			}
			fmt.Fprintln(out, "ID | Type | Phases")
			fmt.Fprintln(out, "---|------|-------")
			for _, id := range reg.List() {
				t, _ := reg.Template(id)
				fmt.Fprintf(out, "%s | %s | %v\n", t.ID, t.Type, t.Phases)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print templates as JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
