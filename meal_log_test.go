package main

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedCutGoal saves the reference details and selects a cut: 2075 kcal,
// 140 g protein, 249 g carbs, 58 g fat.
func seedCutGoal(t *testing.T, e *testEnv) {
	t.Helper()
	require.Equal(t, http.StatusOK, e.do(http.MethodPut, "/api/user-details", referenceDetails).Code)
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/goals", `{"goal":"cut"}`).Code)
}

func createMeal(t *testing.T, e *testEnv, date, name, mealType string, calories int, protein, carbs, fat float64) mealLog {
	t.Helper()
	body := fmt.Sprintf(`{"logged_at":%q,"meal_name":%q,"meal_type":%q,"calories":%d,"protein_g":%g,"carbs_g":%g,"fat_g":%g}`,
		date, name, mealType, calories, protein, carbs, fat)
	w := e.do(http.MethodPost, "/api/meal-log/items", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[mealLog](t, w)
}

// seedWeek logs two meals on Monday 2026-10-12 and one large dinner on the Wednesday.
func seedWeek(t *testing.T, e *testEnv) {
	t.Helper()
	createMeal(t, e, "2026-10-12", "Oats", "breakfast", 500, 30, 50, 20)
	createMeal(t, e, "2026-10-12", "Chicken Rice", "lunch", 700, 40, 80, 25)
	createMeal(t, e, "2026-10-14", "Pizza Night", "dinner", 2300, 100, 200, 90)
}

func TestDailySummary_WithoutGoals(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/meal-log/daily?date=2026-10-12", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[map[string]any](t, w)
	assert.Equal(t, "2026-10-12", resp["date"])
	assert.Nil(t, resp["goals"], "no fallback target without a saved goal")
	assert.Nil(t, resp["remaining"])
	assert.Equal(t, []any{}, resp["items"])
}

func TestDailySummary_WithGoals(t *testing.T) {
	e := newTestEnv(t)
	seedCutGoal(t, e)
	seedWeek(t, e)

	w := e.do(http.MethodGet, "/api/meal-log/daily?date=2026-10-12", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[dailySummary](t, w)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Oats", resp.Items[0].MealName)
	assert.Equal(t, macroTotals{Calories: 1200, ProteinG: 70, CarbsG: 130, FatG: 45}, resp.Totals)
	require.NotNil(t, resp.Goals)
	assert.Equal(t, 2075, resp.Goals.TargetCalories)
	require.NotNil(t, resp.Remaining)
	assert.Equal(t, macroTotals{Calories: 875, ProteinG: 70, CarbsG: 119, FatG: 13}, *resp.Remaining)
}

func TestDailySummary_InvalidDate(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/meal-log/daily?date=12-10-2026", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid date, expected YYYY-MM-DD", errorMessage(t, w))
}

func TestWeekSummary(t *testing.T) {
	e := newTestEnv(t)
	seedCutGoal(t, e)
	seedWeek(t, e)

	w := e.do(http.MethodGet, "/api/meal-log/week-summary?week_start=2026-10-12", "")
	require.Equal(t, http.StatusOK, w.Code)

	days := decode[[]weekDaySummary](t, w)
	require.Len(t, days, 7)
	assert.Equal(t, "2026-10-12", days[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2026-10-18", days[6].Date.Format("2006-01-02"))

	assert.True(t, days[0].HasData)
	assert.Equal(t, 1200, days[0].Calories)
	require.NotNil(t, days[0].CaloriesLeft)
	assert.Equal(t, 875, *days[0].CaloriesLeft)

	assert.False(t, days[1].HasData)
	assert.Equal(t, 0, days[1].Calories)
	require.NotNil(t, days[1].TargetCalories)
	assert.Equal(t, 2075, *days[1].TargetCalories)

	assert.True(t, days[2].HasData)
	assert.Equal(t, -225, *days[2].CaloriesLeft)
}

func TestWeekSummary_MidweekStartSnapsToMonday(t *testing.T) {
	e := newTestEnv(t)
	seedWeek(t, e)

	w := e.do(http.MethodGet, "/api/meal-log/week-summary?week_start=2026-10-14", "")
	require.Equal(t, http.StatusOK, w.Code)

	days := decode[[]weekDaySummary](t, w)
	require.Len(t, days, 7)
	assert.Equal(t, "2026-10-12", days[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2026-10-18", days[6].Date.Format("2006-01-02"))
	assert.Equal(t, 1200, days[0].Calories)
	assert.Equal(t, 2300, days[2].Calories)
}

func TestMondayOf(t *testing.T) {
	tests := map[string]string{
		"2026-10-12": "2026-10-12", // Monday
		"2026-10-14": "2026-10-12",
		"2026-10-18": "2026-10-12", // Sunday ends the week
		"2026-11-01": "2026-10-26", // across a month boundary
		"2027-01-02": "2026-12-28", // across a year boundary
	}
	for in, want := range tests {
		d, err := time.Parse("2006-01-02", in)
		require.NoError(t, err)
		assert.Equal(t, want, mondayOf(d).Format("2006-01-02"), in)
	}
}

func TestWeekSummary_WithoutGoals(t *testing.T) {
	e := newTestEnv(t)
	seedWeek(t, e)

	w := e.do(http.MethodGet, "/api/meal-log/week-summary?week_start=2026-10-12", "")
	require.Equal(t, http.StatusOK, w.Code)

	days := decode[[]weekDaySummary](t, w)
	require.Len(t, days, 7)
	for _, d := range days {
		assert.Nil(t, d.TargetCalories)
		assert.Nil(t, d.CaloriesLeft)
	}
	assert.Equal(t, 1200, days[0].Calories)
}

func TestWeekSummary_DefaultsToCurrentWeek(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/meal-log/week-summary", "")
	require.Equal(t, http.StatusOK, w.Code)

	days := decode[[]weekDaySummary](t, w)
	require.Len(t, days, 7)
	assert.Equal(t, time.Monday, days[0].Date.Weekday())

	w = e.do(http.MethodGet, "/api/meal-log/week-summary?week_start=next", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProgress(t *testing.T) {
	e := newTestEnv(t)
	seedCutGoal(t, e)
	seedWeek(t, e)

	w := e.do(http.MethodGet, "/api/meal-log/progress?start=2026-10-12&end=2026-10-18", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[progressResponse](t, w)
	require.Len(t, resp.Days, 2, "only days with meals are returned")
	assert.Equal(t, progressStats{
		DaysTracked:  2,
		DaysOnTarget: 1,
		AvgCalories:  1750,
		AvgProteinG:  85,
		AvgCarbsG:    165,
		AvgFatG:      67.5,
	}, resp.Stats)
}

func TestProgress_Empty(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/meal-log/progress?start=2026-10-12&end=2026-10-18", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[map[string]any](t, w)
	assert.Equal(t, []any{}, resp["days"])
}

func TestCreateMealLog_Validation(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"missing name", `{"meal_type":"lunch","calories":100}`, "meal_name is required"},
		{"bad type", `{"meal_name":"Soup","meal_type":"brunch","calories":100}`, "meal_type must be one of: breakfast, mid-morning, lunch, snack, dinner"},
		{"negative calories", `{"meal_name":"Soup","meal_type":"lunch","calories":-5}`, "calories and macros must not be negative"},
		{"negative fat", `{"meal_name":"Soup","meal_type":"lunch","calories":100,"fat_g":-1}`, "calories and macros must not be negative"},
		{"bad date", `{"meal_name":"Soup","meal_type":"lunch","calories":100,"logged_at":"yesterday"}`, "invalid logged_at, expected YYYY-MM-DD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(http.MethodPost, "/api/meal-log/items", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.msg, errorMessage(t, w))
		})
	}
}

func TestUpdateMealLog(t *testing.T) {
	e := newTestEnv(t)
	m := createMeal(t, e, "2026-10-12", "Oats", "breakfast", 500, 30, 50, 20)
	path := fmt.Sprintf("/api/meal-log/items/%d", m.ID)

	w := e.do(http.MethodPut, path, `{"calories":450,"meal_type":"mid-morning"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode[mealLog](t, w)
	assert.Equal(t, 450, got.Calories)
	assert.Equal(t, "mid-morning", got.MealType)
	assert.Equal(t, "Oats", got.MealName, "omitted fields keep their value")
	assert.Equal(t, 30.0, got.ProteinG)

	w = e.do(http.MethodPut, path, `{"meal_type":"supper"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPut, path, `{"meal_name":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "meal_name must not be empty", errorMessage(t, w))

	w = e.do(http.MethodPut, path, `{"protein_g":-2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.doAs(otherUserToken, http.MethodPut, path, `{"calories":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code, "other users cannot edit the entry")

	w = e.do(http.MethodPut, "/api/meal-log/items/999", `{"calories":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "meal not found", errorMessage(t, w))
}

func TestDeleteMealLog(t *testing.T) {
	e := newTestEnv(t)
	m := createMeal(t, e, "2026-10-12", "Oats", "breakfast", 500, 30, 50, 20)
	path := fmt.Sprintf("/api/meal-log/items/%d", m.ID)

	w := e.doAs(otherUserToken, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMealLog_StoreFailure(t *testing.T) {
	e := newTestEnv(t)
	e.store.failWith = errors.New("connection reset")

	w := e.do(http.MethodGet, "/api/meal-log/daily?date=2026-10-12", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = e.do(http.MethodPost, "/api/meal-log/items", `{"meal_name":"Soup","meal_type":"lunch","calories":100}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "failed to create meal", errorMessage(t, w))

	w = e.do(http.MethodDelete, "/api/meal-log/items/1", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
