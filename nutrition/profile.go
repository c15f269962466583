package nutrition

import (
	"fmt"
	"math"

	"go.uber.org/multierr"
)

/* ─── Sex ────────────────────────────────────────────────────────────── */

// Sex selects the Mifflin-St Jeor offset term. The zero value is invalid so an
// unset field is rejected instead of quietly picking one of the formulas.
type Sex uint8

const (
	_ Sex = iota
	Male
	Female
)

var sexNames = map[Sex]string{
	Male:   "male",
	Female: "female",
}

// ParseSex converts the stored/transport form ("male", "female") into a Sex.
func ParseSex(s string) (Sex, error) {
	for k, v := range sexNames {
		if v == s {
			return k, nil
		}
	}
	return 0, &FieldError{Field: "sex", Value: s, Reason: "must be one of: male, female"}
}

func (s Sex) String() string {
	if name, ok := sexNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Sex(%d)", uint8(s))
}

func (s Sex) valid() bool {
	_, ok := sexNames[s]
	return ok
}

func (s Sex) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, &FieldError{Field: "sex", Value: s.String(), Reason: "unknown value"}
	}
	return []byte(s.String()), nil
}

func (s *Sex) UnmarshalText(b []byte) error {
	parsed, err := ParseSex(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

/* ─── Activity level ─────────────────────────────────────────────────── */

// ActivityLevel selects a fixed TDEE multiplier. The zero value is invalid.
type ActivityLevel uint8

const (
	_ ActivityLevel = iota
	Sedentary
	LightlyActive
	ModeratelyActive
	VeryActive
	ExtraActive
)

type activityInfo struct {
	name     string
	perMille int
}

// activityLevels is the single source of truth for valid activity levels and
// their multipliers.
var activityLevels = map[ActivityLevel]activityInfo{
	Sedentary:        {"sedentary", 1200},
	LightlyActive:    {"lightly_active", 1375},
	ModeratelyActive: {"moderately_active", 1550},
	VeryActive:       {"very_active", 1725},
	ExtraActive:      {"extra_active", 1900},
}

// ActivityLevels returns every valid level, least to most active.
func ActivityLevels() []ActivityLevel {
	return []ActivityLevel{Sedentary, LightlyActive, ModeratelyActive, VeryActive, ExtraActive}
}

func ParseActivityLevel(s string) (ActivityLevel, error) {
	for k, v := range activityLevels {
		if v.name == s {
			return k, nil
		}
	}
	return 0, &FieldError{
		Field:  "activityLevel",
		Value:  s,
		Reason: "must be one of: sedentary, lightly_active, moderately_active, very_active, extra_active",
	}
}

func (a ActivityLevel) String() string {
	if info, ok := activityLevels[a]; ok {
		return info.name
	}
	return fmt.Sprintf("ActivityLevel(%d)", uint8(a))
}

// Multiplier returns the TDEE multiplier, or 0 for an invalid level.
func (a ActivityLevel) Multiplier() float64 {
	return float64(activityLevels[a].perMille) / 1000
}

func (a ActivityLevel) valid() bool {
	_, ok := activityLevels[a]
	return ok
}

func (a ActivityLevel) MarshalText() ([]byte, error) {
	if !a.valid() {
		return nil, &FieldError{Field: "activityLevel", Value: a.String(), Reason: "unknown value"}
	}
	return []byte(a.String()), nil
}

func (a *ActivityLevel) UnmarshalText(b []byte) error {
	parsed, err := ParseActivityLevel(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

/* ─── Profile ────────────────────────────────────────────────────────── */

// Profile is the biometric input to the maintenance estimate. The calculator
// only reads it.
type Profile struct {
	Age           int
	WeightKg      float64
	HeightCm      float64
	Sex           Sex
	ActivityLevel ActivityLevel
}

// Validate reports every out-of-domain field. The returned error matches
// ErrInvalidProfile with errors.Is; each field problem is a *FieldError.
func (p Profile) Validate() error {
	var err error
	if p.Age <= 0 {
		err = multierr.Append(err, &FieldError{Field: "age", Value: fmt.Sprint(p.Age), Reason: "must be positive"})
	}
	if !positiveFinite(p.WeightKg) {
		err = multierr.Append(err, &FieldError{Field: "weightKg", Value: fmt.Sprint(p.WeightKg), Reason: "must be a positive number"})
	}
	if !positiveFinite(p.HeightCm) {
		err = multierr.Append(err, &FieldError{Field: "heightCm", Value: fmt.Sprint(p.HeightCm), Reason: "must be a positive number"})
	}
	if !p.Sex.valid() {
		err = multierr.Append(err, &FieldError{Field: "sex", Value: p.Sex.String(), Reason: "must be one of: male, female"})
	}
	if !p.ActivityLevel.valid() {
		err = multierr.Append(err, &FieldError{Field: "activityLevel", Value: p.ActivityLevel.String(), Reason: "unknown activity level"})
	}
	return err
}

// positiveFinite is false for NaN, ±Inf, zero and negatives.
func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
