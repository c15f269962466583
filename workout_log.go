package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// validExerciseTypes is the set of lifts the workout log accepts.
var validExerciseTypes = map[string]bool{
	"bench-press":    true,
	"squat":          true,
	"deadlift":       true,
	"overhead-press": true,
	"barbell-row":    true,
	"pull-ups":       true,
	"dips":           true,
}

const exerciseTypesMessage = "exercise_type must be one of: bench-press, squat, deadlift, overhead-press, barbell-row, pull-ups, dips"

// getWorkoutLog returns workout entries for the authenticated user within [start, end].
// GET /api/workout-log?start=YYYY-MM-DD&end=YYYY-MM-DD[&exercise_type=squat].
// Returns an empty array (not null) if no entries exist in the range.
func (h *Handler) getWorkoutLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	start, end, ok := dateRange(c)
	if !ok {
		return
	}
	exerciseType := c.Query("exercise_type")
	if exerciseType != "" && !validExerciseTypes[exerciseType] {
		apiError(c, http.StatusBadRequest, exerciseTypesMessage)
		return
	}

	entries, err := h.store.workoutLogs(c.Request.Context(), userID, start, end, exerciseType)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch workout log")
		return
	}
	if entries == nil {
		entries = []workoutLog{}
	}

	c.JSON(http.StatusOK, entries)
}

// createWorkoutLog records one exercise.
// POST /api/workout-log. Body: { "exercise_type", "sets", "reps", "weight_kg"?, "logged_at"? }.
// Bodyweight movements (pull-ups, dips) may omit weight_kg.
func (h *Handler) createWorkoutLog(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createWorkoutLogRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validExerciseTypes[body.ExerciseType] {
		apiError(c, http.StatusBadRequest, exerciseTypesMessage)
		return
	}
	if body.Sets <= 0 || body.Reps <= 0 {
		apiError(c, http.StatusBadRequest, "sets and reps must be positive")
		return
	}
	if body.WeightKG < 0 || body.WeightKG > 1000 {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 0 and 1000")
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

	entry, err := h.store.createWorkoutLog(c.Request.Context(), workoutLog{
		UserID:       userID,
		LoggedAt:     DateOnly{loggedAt},
		ExerciseType: body.ExerciseType,
		Sets:         body.Sets,
		Reps:         body.Reps,
		WeightKG:     body.WeightKG,
	})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create workout entry")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// deleteWorkoutLog removes a workout entry by ID.
// DELETE /api/workout-log/:id. Returns 204 on success, 404 if not found.
// Ownership is enforced by requiring both id and user_id to match.
func (h *Handler) deleteWorkoutLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, ok := idParam(c)
	if !ok {
		return
	}

	err := h.store.deleteWorkoutLog(c.Request.Context(), userID, id)
	if errors.Is(err, errNotFound) {
		apiError(c, http.StatusNotFound, "workout entry not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete workout entry")
		return
	}

	c.Status(http.StatusNoContent)
}

// getWorkoutProgression returns the per-day best weight and total volume for one lift.
// GET /api/workout-log/progression?exercise_type=squat.
func (h *Handler) getWorkoutProgression(c *gin.Context) {
	userID := c.GetInt("user_id")
	exerciseType := c.Query("exercise_type")
	if !validExerciseTypes[exerciseType] {
		apiError(c, http.StatusBadRequest, exerciseTypesMessage)
		return
	}

	points, err := h.store.workoutProgression(c.Request.Context(), userID, exerciseType)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch progression")
		return
	}
	if points == nil {
		points = []progressionPoint{}
	}

	c.JSON(http.StatusOK, points)
}
