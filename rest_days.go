package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// getRestDays returns the authenticated user's rest days within [start, end].
// GET /api/rest-days?start=YYYY-MM-DD&end=YYYY-MM-DD.
// Returns an empty array (not null) if none are marked in the range.
func (h *Handler) getRestDays(c *gin.Context) {
	userID := c.GetInt("user_id")
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	days, err := h.store.restDays(c.Request.Context(), userID, start, end)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch rest days")
		return
	}
	if days == nil {
		days = []restDay{}
	}

	c.JSON(http.StatusOK, days)
}

// toggleRestDay marks a date as a rest day, or unmarks it if it already is one.
// POST /api/rest-days/toggle. Body: { "date": "YYYY-MM-DD" }.
func (h *Handler) toggleRestDay(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body toggleRestDayRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	rest, err := h.store.toggleRestDay(c.Request.Context(), userID, body.Date)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update rest day")
		return
	}

	c.JSON(http.StatusOK, restDayToggle{Date: DateOnly{date}, RestDay: rest})
}
