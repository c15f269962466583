package nutrition

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	// ErrInvalidProfile is matched by every input validation failure on
	// biometric values, including the weight and maintenance passed to
	// ComputeNutritionTargets.
	ErrInvalidProfile = errors.New("invalid profile")
	ErrInvalidGoal    = errors.New("invalid goal")
	// ErrGoalInfeasible means protein and fat alone exceed the calorie target,
	// which would leave a negative carbohydrate allocation.
	ErrGoalInfeasible = errors.New("goal infeasible")
)

// FieldError identifies the offending field of a rejected input.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s %q: %s", ErrInvalidProfile, e.Field, e.Value, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalidProfile }

// InfeasibleError carries the calorie breakdown that made a goal infeasible.
type InfeasibleError struct {
	TargetCalories  int
	ProteinCalories int
	FatCalories     int
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("%s: protein %d kcal + fat %d kcal exceed target %d kcal",
		ErrGoalInfeasible, e.ProteinCalories, e.FatCalories, e.TargetCalories)
}

func (e *InfeasibleError) Unwrap() error { return ErrGoalInfeasible }

// FieldErrors flattens a validation error into its per-field parts.
func FieldErrors(err error) []*FieldError {
	var out []*FieldError
	for _, e := range multierr.Errors(err) {
		var fe *FieldError
		if errors.As(e, &fe) {
			out = append(out, fe)
		}
	}
	return out
}
