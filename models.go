package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"lg/fitin-go-api/nutrition"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly. NULL values zero the time and return nil
// so that *DateOnly pointer fields can be set to nil by pgx's NULL handling.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// userDetails maps to user_details: the biometric profile captured during
// onboarding. Sex and activity level are stored as text and parsed into the
// nutrition enums by profile().
type userDetails struct {
	UserID        int        `json:"user_id"        db:"user_id"`
	Age           int        `json:"age"            db:"age"`
	WeightKG      float64    `json:"weight_kg"      db:"weight_kg"`
	HeightCM      float64    `json:"height_cm"      db:"height_cm"`
	Sex           string     `json:"sex"            db:"sex"`
	ActivityLevel string     `json:"activity_level" db:"activity_level"`
	UpdatedAt     *time.Time `json:"updated_at"     db:"updated_at"`

	// Computed fields, populated server-side and not stored in DB.
	ComputedBMR         *float64 `json:"bmr,omitempty"                  db:"-"`
	ComputedMaintenance *int     `json:"maintenance_calories,omitempty" db:"-"`
}

// profile converts a stored row into a calculator profile, rejecting enum
// values that are not recognised.
func (d userDetails) profile() (nutrition.Profile, error) {
	sex, err := nutrition.ParseSex(d.Sex)
	if err != nil {
		return nutrition.Profile{}, err
	}
	level, err := nutrition.ParseActivityLevel(d.ActivityLevel)
	if err != nil {
		return nutrition.Profile{}, err
	}
	p := nutrition.Profile{
		Age:           d.Age,
		WeightKg:      d.WeightKG,
		HeightCm:      d.HeightCM,
		Sex:           sex,
		ActivityLevel: level,
	}
	return p, p.Validate()
}

// userGoals maps to user_goals. One row per user holding the selected goal and
// the targets computed for it.
type userGoals struct {
	UserID              int        `json:"user_id"              db:"user_id"`
	GoalType            string     `json:"goal_type"            db:"goal_type"`
	MaintenanceCalories int        `json:"maintenance_calories" db:"maintenance_calories"`
	TargetCalories      int        `json:"target_calories"      db:"target_calories"`
	ProteinGrams        int        `json:"protein_grams"        db:"protein_grams"`
	CarbsGrams          int        `json:"carbs_grams"          db:"carbs_grams"`
	FatGrams            int        `json:"fat_grams"            db:"fat_grams"`
	UpdatedAt           *time.Time `json:"updated_at"           db:"updated_at"`
}

func goalsFromTargets(userID int, goal nutrition.Goal, t nutrition.Targets) userGoals {
	return userGoals{
		UserID:              userID,
		GoalType:            goal.String(),
		MaintenanceCalories: t.MaintenanceCalories,
		TargetCalories:      t.TargetCalories,
		ProteinGrams:        t.ProteinGrams,
		CarbsGrams:          t.CarbGrams,
		FatGrams:            t.FatGrams,
	}
}

// mealLog maps to meal_logs.
type mealLog struct {
	ID        int        `json:"id"         db:"id"`
	UserID    int        `json:"user_id"    db:"user_id"`
	LoggedAt  DateOnly   `json:"logged_at"  db:"logged_at"`
	MealName  string     `json:"meal_name"  db:"meal_name"`
	MealType  string     `json:"meal_type"  db:"meal_type"`
	Calories  int        `json:"calories"   db:"calories"`
	ProteinG  float64    `json:"protein_g"  db:"protein_g"`
	CarbsG    float64    `json:"carbs_g"    db:"carbs_g"`
	FatG      float64    `json:"fat_g"      db:"fat_g"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// workoutLog maps to workout_logs.
type workoutLog struct {
	ID           int        `json:"id"            db:"id"`
	UserID       int        `json:"user_id"       db:"user_id"`
	LoggedAt     DateOnly   `json:"logged_at"     db:"logged_at"`
	ExerciseType string     `json:"exercise_type" db:"exercise_type"`
	Sets         int        `json:"sets"          db:"sets"`
	Reps         int        `json:"reps"          db:"reps"`
	WeightKG     float64    `json:"weight_kg"     db:"weight_kg"`
	CreatedAt    *time.Time `json:"created_at"    db:"created_at"`
}

// restDay maps to rest_days. A user has at most one row per date.
type restDay struct {
	ID        int        `json:"id"         db:"id"`
	UserID    int        `json:"user_id"    db:"user_id"`
	RestDate  DateOnly   `json:"rest_date"  db:"rest_date"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// dayTotals is the shape of each row returned by the per-day meal GROUP BY query.
type dayTotals struct {
	Date     DateOnly `db:"date"`
	Calories int      `db:"calories"`
	ProteinG float64  `db:"protein_g"`
	CarbsG   float64  `db:"carbs_g"`
	FatG     float64  `db:"fat_g"`
}

// progressionPoint is one day of a strength progression series.
type progressionPoint struct {
	Date         DateOnly `json:"date"           db:"date"`
	BestWeightKG float64  `json:"best_weight_kg" db:"best_weight_kg"`
	Volume       float64  `json:"volume"         db:"volume"`
}

/* ─── Responses ──────────────────────────────────────────────────────── */

// macroTotals is a calorie + macro tally, used for both consumed and remaining amounts.
type macroTotals struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// dailySummary is the response shape for GET /meal-log/daily. Goals and
// Remaining are null until the user has selected a goal.
type dailySummary struct {
	Date      string       `json:"date"`
	Totals    macroTotals  `json:"totals"`
	Goals     *userGoals   `json:"goals"`
	Remaining *macroTotals `json:"remaining"`
	Items     []mealLog    `json:"items"`
}

// weekDaySummary is one day's entry in the week-summary and progress responses.
// Days with no logged meals have HasData=false and zero totals.
type weekDaySummary struct {
	Date           DateOnly `json:"date"`
	TargetCalories *int     `json:"target_calories"`
	Calories       int      `json:"calories"`
	CaloriesLeft   *int     `json:"calories_left"`
	ProteinG       float64  `json:"protein_g"`
	CarbsG         float64  `json:"carbs_g"`
	FatG           float64  `json:"fat_g"`
	HasData        bool     `json:"has_data"`
}

// progressStats aggregates the tracked days of a progress range. DaysOnTarget
// counts days at or under the calorie target; it stays 0 without goals.
type progressStats struct {
	DaysTracked  int     `json:"days_tracked"`
	DaysOnTarget int     `json:"days_on_target"`
	AvgCalories  int     `json:"avg_calories"`
	AvgProteinG  float64 `json:"avg_protein_g"`
	AvgCarbsG    float64 `json:"avg_carbs_g"`
	AvgFatG      float64 `json:"avg_fat_g"`
}

type progressResponse struct {
	Days  []weekDaySummary `json:"days"`
	Stats progressStats    `json:"stats"`
}

// restDayToggle reports the state of a date after a toggle.
type restDayToggle struct {
	Date    DateOnly `json:"date"`
	RestDay bool     `json:"rest_day"`
}

/* ─── Requests ───────────────────────────────────────────────────────── */

// putUserDetailsRequest is the request body for PUT /api/user-details. The
// enum fields reject unknown values while the body is decoded.
type putUserDetailsRequest struct {
	Age           int                     `json:"age"`
	WeightKG      float64                 `json:"weight_kg"`
	HeightCM      float64                 `json:"height_cm"`
	Sex           nutrition.Sex           `json:"sex"`
	ActivityLevel nutrition.ActivityLevel `json:"activity_level"`
}

// selectGoalRequest is the request body for POST /api/goals.
type selectGoalRequest struct {
	Goal nutrition.Goal `json:"goal"`
}

// createMealLogRequest is the request body for POST /api/meal-log/items.
type createMealLogRequest struct {
	LoggedAt string  `json:"logged_at"`
	MealName string  `json:"meal_name"`
	MealType string  `json:"meal_type"`
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// updateMealLogRequest is the request body for PUT /api/meal-log/items/:id.
// All fields are pointers; omitted fields keep their current value.
type updateMealLogRequest struct {
	LoggedAt *string  `json:"logged_at"`
	MealName *string  `json:"meal_name"`
	MealType *string  `json:"meal_type"`
	Calories *int     `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	CarbsG   *float64 `json:"carbs_g"`
	FatG     *float64 `json:"fat_g"`
}

// createWorkoutLogRequest is the request body for POST /api/workout-log.
type createWorkoutLogRequest struct {
	LoggedAt     string  `json:"logged_at"`
	ExerciseType string  `json:"exercise_type"`
	Sets         int     `json:"sets"`
	Reps         int     `json:"reps"`
	WeightKG     float64 `json:"weight_kg"`
}

type toggleRestDayRequest struct {
	Date string `json:"date"`
}
