package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler holds shared dependencies (store, metrics, config) for all route handlers.
type Handler struct {
	store         store
	metrics       *metrics
	openAIBaseURL string // Base URL for the OpenAI API (overridable for tests)
	openAIAPIKey  string
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// idParam parses the :id path parameter, writing a 400 when it is not a
// positive integer.
func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		apiError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// dateRange validates the required start/end query params (YYYY-MM-DD,
// start <= end), writing a 400 on failure.
func dateRange(c *gin.Context) (start, end string, ok bool) {
	start = c.Query("start")
	end = c.Query("end")

	if start == "" || end == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return "", "", false
	}
	if _, err := time.Parse("2006-01-02", start); err != nil {
		apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		return "", "", false
	}
	if _, err := time.Parse("2006-01-02", end); err != nil {
		apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		return "", "", false
	}
	if start > end {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return "", "", false
	}
	return start, end, true
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/user-details", h.getUserDetails)
	api.PUT("/user-details", h.putUserDetails)
	api.GET("/goals", h.getGoals)
	api.GET("/goals/options", h.getGoalOptions)
	api.POST("/goals", h.selectGoal)
	api.GET("/meal-log/daily", h.getDailySummary)
	api.GET("/meal-log/week-summary", h.getWeekSummary)
	api.GET("/meal-log/progress", h.getProgress)
	api.POST("/meal-log/items", h.createMealLog)
	api.PUT("/meal-log/items/:id", h.updateMealLog)
	api.DELETE("/meal-log/items/:id", h.deleteMealLog)
	api.POST("/meal-log/suggest", h.suggestMeal)
	api.GET("/workout-log", h.getWorkoutLog)
	api.POST("/workout-log", h.createWorkoutLog)
	api.DELETE("/workout-log/:id", h.deleteWorkoutLog)
	api.GET("/workout-log/progression", h.getWorkoutProgression)
	api.GET("/rest-days", h.getRestDays)
	api.POST("/rest-days/toggle", h.toggleRestDay)
}
