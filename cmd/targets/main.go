// targets prints maintenance calories and macro targets for a profile given
// on the command line. It does not touch the database.
// Usage: go run ./cmd/targets --age 25 --weight 70 --height 175 --sex male --activity moderately_active --goal cut
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"lg/fitin-go-api/nutrition"
)

type targetsFlags struct {
	age      int
	weight   float64
	height   float64
	sex      string
	activity string
	goal     string
	all      bool
	json     bool
}

// result is one goal's outcome; Error is set instead of Targets when the
// calculator rejected the goal.
type result struct {
	Goal    nutrition.Goal     `json:"goal"`
	Targets *nutrition.Targets `json:"targets,omitempty"`
	Error   string             `json:"error,omitempty"`
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var f targetsFlags

	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Compute maintenance calories and macro targets",
		Long: `Estimate maintenance calories with the Mifflin-St Jeor equation and an
activity multiplier, then split the goal-adjusted target into protein
(2 g/kg), fat (25% of calories) and carbohydrate (the rest).`,
		Example: `  targets --age 25 --weight 70 --height 175 --sex male --activity moderately_active --goal cut
  targets --age 30 --weight 60 --height 165 --sex female --activity sedentary --all --json`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(out, f)
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&f.age, "age", 0, "age in years")
	fl.Float64Var(&f.weight, "weight", 0, "body weight in kg")
	fl.Float64Var(&f.height, "height", 0, "height in cm")
	fl.StringVar(&f.sex, "sex", "", "male or female")
	fl.StringVar(&f.activity, "activity", "", "sedentary, lightly_active, moderately_active, very_active or extra_active")
	fl.StringVar(&f.goal, "goal", "maintain", "maintain, cut or bulk")
	fl.BoolVar(&f.all, "all", false, "compute every goal")
	fl.BoolVar(&f.json, "json", false, "print JSON instead of a table")
	for _, name := range []string{"age", "weight", "height", "sex", "activity"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

// parseProfile collects every flag problem instead of stopping at the first.
func parseProfile(f targetsFlags) (nutrition.Profile, error) {
	var errs error
	sex, err := nutrition.ParseSex(f.sex)
	errs = multierr.Append(errs, err)
	level, err := nutrition.ParseActivityLevel(f.activity)
	errs = multierr.Append(errs, err)
	if errs != nil {
		return nutrition.Profile{}, errs
	}

	p := nutrition.Profile{Age: f.age, WeightKg: f.weight, HeightCm: f.height, Sex: sex, ActivityLevel: level}
	return p, p.Validate()
}

func run(out io.Writer, f targetsFlags) error {
	p, err := parseProfile(f)
	if err != nil {
		return err
	}
	maintenance, err := nutrition.EstimateMaintenanceCalories(p)
	if err != nil {
		return err
	}

	goals := nutrition.Goals()
	if !f.all {
		goal, err := nutrition.ParseGoal(f.goal)
		if err != nil {
			return err
		}
		goals = []nutrition.Goal{goal}
	}

	results := make([]result, 0, len(goals))
	var failed error
	for _, goal := range goals {
		t, err := nutrition.ComputeNutritionTargets(maintenance, goal, p.WeightKg)
		if err != nil {
			results = append(results, result{Goal: goal, Error: err.Error()})
			failed = multierr.Append(failed, err)
			continue
		}
		results = append(results, result{Goal: goal, Targets: &t})
	}

	if f.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{"maintenance_calories": maintenance, "results": results}); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	} else if err := printTable(out, maintenance, results); err != nil {
		return err
	}

	// With --all an infeasible goal is reported in the output, not as a failure.
	if !f.all && failed != nil {
		return failed
	}
	return nil
}

func printTable(out io.Writer, maintenance int, results []result) error {
	if _, err := fmt.Fprintf(out, "Maintenance: %d kcal\n\n", maintenance); err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	if _, err := fmt.Fprintln(w, "GOAL\tKCAL\tPROTEIN\tCARBS\tFAT"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range results {
		var err error
		if r.Targets == nil {
			_, err = fmt.Fprintf(w, "%s\t-\t-\t-\t-\t(%s)\n", r.Goal, r.Error)
		} else {
			t := r.Targets
			_, err = fmt.Fprintf(w, "%s\t%d\t%dg\t%dg\t%dg\n", r.Goal, t.TargetCalories, t.ProteinGrams, t.CarbGrams, t.FatGrams)
		}
		if err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	return w.Flush()
}
