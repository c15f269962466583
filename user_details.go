package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"lg/fitin-go-api/nutrition"
)

// Onboarding bounds for user-entered details. The calculator itself only
// requires positive values; these keep obviously mistyped numbers out of the DB.
const (
	minAge, maxAge           = 13, 120
	minWeightKG, maxWeightKG = 30.0, 300.0
	minHeightCM, maxHeightCM = 100.0, 250.0
)

// populateComputedDetails fills the computed-only fields on d. No-ops if the
// stored row does not form a valid profile.
func populateComputedDetails(d *userDetails) {
	p, err := d.profile()
	if err != nil {
		log.Warnf("[populateComputedDetails] user %d has an invalid profile: %v", d.UserID, err)
		return
	}
	bmr, err := nutrition.BasalMetabolicRate(p)
	if err != nil {
		return
	}
	maintenance, err := nutrition.EstimateMaintenanceCalories(p)
	if err != nil {
		return
	}
	d.ComputedBMR = &bmr
	d.ComputedMaintenance = &maintenance
}

// getUserDetails returns the biometric profile for the authenticated user,
// with computed BMR and maintenance calories.
// GET /api/user-details.
func (h *Handler) getUserDetails(c *gin.Context) {
	userID := c.GetInt("user_id")

	d, err := h.store.userDetails(c.Request.Context(), userID)
	if errors.Is(err, errNotFound) {
		apiError(c, http.StatusNotFound, "user details not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch user details")
		return
	}

	populateComputedDetails(&d)

	c.JSON(http.StatusOK, d)
}

// putUserDetails creates or replaces the user's biometric profile.
// PUT /api/user-details. Every field is required. When the user already has a
// saved goal, its targets are recomputed from the new details.
func (h *Handler) putUserDetails(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body putUserDetailsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		// Unknown sex/activity values fail here, before anything is saved.
		if fe := nutrition.FieldErrors(err); len(fe) > 0 {
			apiError(c, http.StatusBadRequest, fe[0].Field+": "+fe[0].Reason)
			return
		}
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := validateDetails(body); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	ctx := c.Request.Context()
	d, err := h.store.upsertUserDetails(ctx, userDetails{
		UserID:        userID,
		Age:           body.Age,
		WeightKG:      body.WeightKG,
		HeightCM:      body.HeightCM,
		Sex:           body.Sex.String(),
		ActivityLevel: body.ActivityLevel.String(),
	})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save user details")
		return
	}

	h.refreshGoals(c, d)
	populateComputedDetails(&d)

	c.JSON(http.StatusOK, d)
}

// validateDetails returns a user-facing message for the first field outside
// the onboarding bounds, or "" when the body is acceptable.
func validateDetails(body putUserDetailsRequest) string {
	switch {
	case body.Age < minAge || body.Age > maxAge:
		return "age must be between 13 and 120"
	case body.WeightKG < minWeightKG || body.WeightKG > maxWeightKG:
		return "weight_kg must be between 30 and 300"
	case body.HeightCM < minHeightCM || body.HeightCM > maxHeightCM:
		return "height_cm must be between 100 and 250"
	case body.Sex == 0:
		return "sex is required"
	case body.ActivityLevel == 0:
		return "activity_level is required"
	}
	return ""
}

// refreshGoals recomputes a previously selected goal after the details change.
// Failures are logged and leave the old targets in place.
func (h *Handler) refreshGoals(c *gin.Context, d userDetails) {
	ctx := c.Request.Context()

	g, err := h.store.userGoals(ctx, d.UserID)
	if errors.Is(err, errNotFound) {
		return
	}
	if err != nil {
		log.Errorf("[refreshGoals] goals lookup failed for user %d: %v", d.UserID, err)
		return
	}

	goal, err := nutrition.ParseGoal(g.GoalType)
	if err != nil {
		log.Warnf("[refreshGoals] user %d has an unknown stored goal: %v", d.UserID, err)
		return
	}
	p, err := d.profile()
	if err != nil {
		log.Warnf("[refreshGoals] user %d profile rejected: %v", d.UserID, err)
		return
	}
	targets, err := nutrition.ForProfile(p, goal)
	if err != nil {
		h.metrics.calculatorRejected(err)
		log.Warnf("[refreshGoals] cannot recompute %s for user %d: %v", goal, d.UserID, err)
		return
	}
	h.metrics.targetsSaved(goal)

	if _, err := h.store.upsertUserGoals(ctx, goalsFromTargets(d.UserID, goal, targets)); err != nil {
		log.Errorf("[refreshGoals] goals update failed for user %d: %v", d.UserID, err)
	}
}
