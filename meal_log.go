package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// validMealTypes is the set of allowed values for the meal_type column.
// Reject unknown values with 400 rather than letting the DB return a cryptic 500.
var validMealTypes = map[string]bool{
	"breakfast":   true,
	"mid-morning": true,
	"lunch":       true,
	"snack":       true,
	"dinner":      true,
}

// goalsOrNil loads the user's saved goals, treating "no goals yet" as nil.
func (h *Handler) goalsOrNil(c *gin.Context, userID int) (*userGoals, error) {
	g, err := h.store.userGoals(c.Request.Context(), userID)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// remainingFor subtracts consumed totals from the saved targets.
func remainingFor(g *userGoals, totals macroTotals) *macroTotals {
	if g == nil {
		return nil
	}
	return &macroTotals{
		Calories: g.TargetCalories - totals.Calories,
		ProteinG: float64(g.ProteinGrams) - totals.ProteinG,
		CarbsG:   float64(g.CarbsGrams) - totals.CarbsG,
		FatG:     float64(g.FatGrams) - totals.FatG,
	}
}

// getDailySummary returns meal log items, totals and remaining targets for a given date.
// GET /api/meal-log/daily?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getDailySummary(c *gin.Context) {
	userID := c.GetInt("user_id")
	date := c.DefaultQuery("date", time.Now().Format("2006-01-02"))

	// Validate date format before querying: an invalid value silently returns no rows.
	if _, err := time.Parse("2006-01-02", date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	items, err := h.store.mealLogs(c.Request.Context(), userID, date)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch meals")
		return
	}
	// Ensure items is an empty array (not null) in JSON
	if items == nil {
		items = []mealLog{}
	}

	goals, err := h.goalsOrNil(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch goals")
		return
	}

	var totals macroTotals
	for _, item := range items {
		totals.Calories += item.Calories
		totals.ProteinG += item.ProteinG
		totals.CarbsG += item.CarbsG
		totals.FatG += item.FatG
	}

	c.JSON(http.StatusOK, dailySummary{
		Date:      date,
		Totals:    totals,
		Goals:     goals,
		Remaining: remainingFor(goals, totals),
		Items:     items,
	})
}

// currentMonday returns the Monday of the current week at midnight UTC.
func currentMonday() time.Time {
	return mondayOf(time.Now().UTC())
}

// mondayOf returns the Monday of the week containing t, at midnight UTC.
// Uses AddDate to safely handle month/year boundaries; direct day subtraction
// can produce day=0 or negative, which time.Date normalizes but is confusing.
func mondayOf(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday()) // 0=Sun
	if weekday == 0 {
		weekday = 7 // treat Sunday as day 7 so Mon=1..Sun=7
	}
	daysBack := weekday - 1
	return t.AddDate(0, 0, -daysBack).Truncate(24 * time.Hour)
}

// daySummary builds one day's entry against the optional calorie target.
func daySummary(d DateOnly, row *dayTotals, goals *userGoals) weekDaySummary {
	day := weekDaySummary{Date: d}
	if row != nil {
		day.HasData = true
		day.Calories = row.Calories
		day.ProteinG = row.ProteinG
		day.CarbsG = row.CarbsG
		day.FatG = row.FatG
	}
	if goals != nil {
		target := goals.TargetCalories
		left := target - day.Calories
		day.TargetCalories = &target
		day.CaloriesLeft = &left
	}
	return day
}

// getWeekSummary returns per-day totals for the Mon-Sun week containing
// week_start. Days with no logged meals are included with has_data=false.
// GET /api/meal-log/week-summary?week_start=YYYY-MM-DD (defaults to current week).
func (h *Handler) getWeekSummary(c *gin.Context) {
	userID := c.GetInt("user_id")

	var weekStart time.Time
	if s := c.Query("week_start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid week_start, expected YYYY-MM-DD")
			return
		}
		weekStart = mondayOf(t)
	} else {
		weekStart = currentMonday()
	}
	weekEnd := weekStart.AddDate(0, 0, 6)

	goals, err := h.goalsOrNil(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch goals")
		return
	}

	rows, err := h.store.mealTotalsByDay(c.Request.Context(), userID,
		weekStart.Format("2006-01-02"), weekEnd.Format("2006-01-02"))
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch week data")
		return
	}

	// Index DB rows by date string for O(1) merge.
	rowByDate := make(map[string]dayTotals, len(rows))
	for _, r := range rows {
		rowByDate[r.Date.Time.Format("2006-01-02")] = r
	}

	// Build a full 7-day response, filling zeros for days with no data.
	result := make([]weekDaySummary, 7)
	for i := 0; i < 7; i++ {
		d := weekStart.AddDate(0, 0, i)
		var row *dayTotals
		if r, ok := rowByDate[d.Format("2006-01-02")]; ok {
			row = &r
		}
		result[i] = daySummary(DateOnly{d}, row, goals)
	}

	c.JSON(http.StatusOK, result)
}

// getProgress returns per-day totals and aggregate stats for an arbitrary date range.
// GET /api/meal-log/progress?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Only days with logged meals are returned (no gap-filling, the frontend handles that).
func (h *Handler) getProgress(c *gin.Context) {
	userID := c.GetInt("user_id")
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	goals, err := h.goalsOrNil(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch goals")
		return
	}

	rows, err := h.store.mealTotalsByDay(c.Request.Context(), userID, start, end)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch progress data")
		return
	}

	days := make([]weekDaySummary, 0, len(rows))
	var stats progressStats
	var totalCalories int
	for i := range rows {
		day := daySummary(rows[i].Date, &rows[i], goals)
		days = append(days, day)

		stats.DaysTracked++
		if goals != nil && day.Calories <= goals.TargetCalories {
			stats.DaysOnTarget++
		}
		totalCalories += day.Calories
		stats.AvgProteinG += day.ProteinG
		stats.AvgCarbsG += day.CarbsG
		stats.AvgFatG += day.FatG
	}

	// Convert totals to averages.
	if stats.DaysTracked > 0 {
		n := float64(stats.DaysTracked)
		stats.AvgCalories = totalCalories / stats.DaysTracked
		stats.AvgProteinG /= n
		stats.AvgCarbsG /= n
		stats.AvgFatG /= n
	}

	c.JSON(http.StatusOK, progressResponse{Days: days, Stats: stats})
}

// validMacros rejects negative nutrition values.
func validMacros(calories int, protein, carbs, fat float64) bool {
	return calories >= 0 && protein >= 0 && carbs >= 0 && fat >= 0
}

// createMealLog inserts a new meal entry.
// POST /api/meal-log/items. Defaults logged_at to today if omitted.
func (h *Handler) createMealLog(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createMealLogRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.MealName == "" {
		apiError(c, http.StatusBadRequest, "meal_name is required")
		return
	}
	if !validMealTypes[body.MealType] {
		apiError(c, http.StatusBadRequest, "meal_type must be one of: breakfast, mid-morning, lunch, snack, dinner")
		return
	}
	if !validMacros(body.Calories, body.ProteinG, body.CarbsG, body.FatG) {
		apiError(c, http.StatusBadRequest, "calories and macros must not be negative")
		return
	}

	loggedAt := time.Now()
	if body.LoggedAt != "" {
		t, err := time.Parse("2006-01-02", body.LoggedAt)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid logged_at, expected YYYY-MM-DD")
			return
		}
		loggedAt = t
	}

	item, err := h.store.createMealLog(c.Request.Context(), mealLog{
		UserID:   userID,
		LoggedAt: DateOnly{loggedAt},
		MealName: body.MealName,
		MealType: body.MealType,
		Calories: body.Calories,
		ProteinG: body.ProteinG,
		CarbsG:   body.CarbsG,
		FatG:     body.FatG,
	})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create meal")
		return
	}

	c.JSON(http.StatusCreated, item)
}

// updateMealLog partially updates an existing meal entry.
// PUT /api/meal-log/items/:id. Omitted fields keep their current value.
func (h *Handler) updateMealLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, ok := idParam(c)
	if !ok {
		return
	}

	var body updateMealLogRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.LoggedAt != nil {
		if _, err := time.Parse("2006-01-02", *body.LoggedAt); err != nil {
			apiError(c, http.StatusBadRequest, "invalid logged_at, expected YYYY-MM-DD")
			return
		}
	}
	if body.MealName != nil && *body.MealName == "" {
		apiError(c, http.StatusBadRequest, "meal_name must not be empty")
		return
	}
	if body.MealType != nil && !validMealTypes[*body.MealType] {
		apiError(c, http.StatusBadRequest, "meal_type must be one of: breakfast, mid-morning, lunch, snack, dinner")
		return
	}
	if !validMacros(deref(body.Calories), deref(body.ProteinG), deref(body.CarbsG), deref(body.FatG)) {
		apiError(c, http.StatusBadRequest, "calories and macros must not be negative")
		return
	}

	item, err := h.store.updateMealLog(c.Request.Context(), userID, id, body)
	if err != nil {
		// Distinguish a missing row from a real DB failure so callers get an
		// actionable status code rather than a misleading 404.
		if errors.Is(err, errNotFound) {
			apiError(c, http.StatusNotFound, "meal not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update meal")
		}
		return
	}

	c.JSON(http.StatusOK, item)
}

// deleteMealLog removes a meal entry. Returns 204 on success.
// DELETE /api/meal-log/items/:id.
func (h *Handler) deleteMealLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, ok := idParam(c)
	if !ok {
		return
	}

	err := h.store.deleteMealLog(c.Request.Context(), userID, id)
	if errors.Is(err, errNotFound) {
		apiError(c, http.StatusNotFound, "meal not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete meal")
		return
	}

	c.Status(http.StatusNoContent)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
