// Package nutrition estimates maintenance calories from a biometric profile
// (Mifflin-St Jeor) and turns them into goal-adjusted calorie and macro
// targets.
//
// Every function is pure: no I/O, no shared state, safe for concurrent use.
// Every rounding is half up, applied in the same order every time: calories,
// then grams, then calories from grams. Multipliers are held as exact integers
// (per mille for activity, percent for goals) so a product that lands on .5
// always rounds up instead of depending on its binary approximation.
package nutrition

import (
	"fmt"
	"math"
)

const (
	proteinGramsPerKg = 2.0
	fatCalorieShare   = 0.25

	kcalPerGramProtein = 4
	kcalPerGramCarb    = 4
	kcalPerGramFat     = 9
)

// Targets is the daily calorie and macro allocation for one goal.
type Targets struct {
	MaintenanceCalories int `json:"maintenance_calories"`
	TargetCalories      int `json:"target_calories"`
	ProteinGrams        int `json:"protein_grams"`
	CarbGrams           int `json:"carb_grams"`
	FatGrams            int `json:"fat_grams"`
}

// MacroCalories is the energy of the macro split. It differs from
// TargetCalories only by gram rounding.
func (t Targets) MacroCalories() int {
	return t.ProteinGrams*kcalPerGramProtein + t.CarbGrams*kcalPerGramCarb + t.FatGrams*kcalPerGramFat
}

// BasalMetabolicRate returns the unrounded Mifflin-St Jeor BMR.
func BasalMetabolicRate(p Profile) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return bmr(p), nil
}

func bmr(p Profile) float64 {
	base := 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	if p.Sex == Male {
		return base + 5
	}
	return base - 161
}

// EstimateMaintenanceCalories returns round(BMR * activity multiplier), the
// estimated total daily energy expenditure. Validation happens before any
// arithmetic; no partial result is returned.
func EstimateMaintenanceCalories(p Profile) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	// bmr is a multiple of 0.25 for whole-number inputs, so bmr*perMille is
	// exact and the division yields an exact .5 on a tie.
	return round(bmr(p) * float64(activityLevels[p.ActivityLevel].perMille) / 1000), nil
}

// ComputeNutritionTargets adjusts maintenance calories for the goal and splits
// the result into protein (2 g/kg body weight), fat (25% of calories) and
// carbohydrate (the remainder).
//
// It fails with ErrInvalidGoal for an unknown goal and with ErrGoalInfeasible
// when protein plus fat calories exceed the target.
func ComputeNutritionTargets(maintenanceCalories int, goal Goal, weightKg float64) (Targets, error) {
	if !goal.valid() {
		return Targets{}, fmt.Errorf("%w: %s", ErrInvalidGoal, goal)
	}
	if maintenanceCalories <= 0 {
		return Targets{}, &FieldError{
			Field:  "maintenanceCalories",
			Value:  fmt.Sprint(maintenanceCalories),
			Reason: "must be positive",
		}
	}
	if !positiveFinite(weightKg) {
		return Targets{}, &FieldError{Field: "weightKg", Value: fmt.Sprint(weightKg), Reason: "must be a positive number"}
	}

	target := scalePercent(maintenanceCalories, goalPercents[goal])

	protein := round(weightKg * proteinGramsPerKg)
	fatCalories := round(float64(target) * fatCalorieShare)
	fat := round(float64(fatCalories) / kcalPerGramFat)

	proteinCalories := protein * kcalPerGramProtein
	carbCalories := target - proteinCalories - fatCalories
	if carbCalories < 0 {
		return Targets{}, &InfeasibleError{
			TargetCalories:  target,
			ProteinCalories: proteinCalories,
			FatCalories:     fatCalories,
		}
	}

	return Targets{
		MaintenanceCalories: maintenanceCalories,
		TargetCalories:      target,
		ProteinGrams:        protein,
		CarbGrams:           round(float64(carbCalories) / kcalPerGramCarb),
		FatGrams:            fat,
	}, nil
}

// ForProfile chains EstimateMaintenanceCalories and ComputeNutritionTargets.
func ForProfile(p Profile, goal Goal) (Targets, error) {
	maintenance, err := EstimateMaintenanceCalories(p)
	if err != nil {
		return Targets{}, err
	}
	return ComputeNutritionTargets(maintenance, goal, p.WeightKg)
}

// scalePercent returns n*pct/100 rounded half up, for positive n.
func scalePercent(n, pct int) int {
	return (n*pct + 50) / 100
}

func round(v float64) int {
	return int(math.Round(v))
}
