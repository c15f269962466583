package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"lg/fitin-go-api/nutrition"
)

// errDetailsRequired is returned by profileFor when the user has not completed
// onboarding. There is no default profile: the caller must ask for details.
var errDetailsRequired = errors.New("user details required")

// profileFor loads and parses the user's stored biometric profile.
func (h *Handler) profileFor(c *gin.Context, userID int) (nutrition.Profile, error) {
	d, err := h.store.userDetails(c.Request.Context(), userID)
	if errors.Is(err, errNotFound) {
		return nutrition.Profile{}, errDetailsRequired
	}
	if err != nil {
		return nutrition.Profile{}, err
	}
	return d.profile()
}

// targetsError translates profile/calculator errors into HTTP responses.
func (h *Handler) targetsError(c *gin.Context, err error) {
	var infeasible *nutrition.InfeasibleError
	switch {
	case errors.Is(err, errDetailsRequired):
		apiError(c, http.StatusConflict, "user details required")
	case errors.Is(err, nutrition.ErrInvalidGoal):
		h.metrics.calculatorRejected(err)
		apiError(c, http.StatusBadRequest, "goal must be one of: maintain, cut, bulk")
	case errors.As(err, &infeasible):
		h.metrics.calculatorRejected(err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":            "goal infeasible: protein and fat exceed target calories",
			"target_calories":  infeasible.TargetCalories,
			"protein_calories": infeasible.ProteinCalories,
			"fat_calories":     infeasible.FatCalories,
		})
	case errors.Is(err, nutrition.ErrInvalidProfile):
		h.metrics.calculatorRejected(err)
		fields := []string{}
		for _, fe := range nutrition.FieldErrors(err) {
			fields = append(fields, fe.Field)
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "stored user details are invalid", "fields": fields})
	default:
		log.Errorf("[targetsError] unexpected error: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to compute targets")
	}
}

// getGoals returns the saved goal and targets for the authenticated user.
// GET /api/goals.
func (h *Handler) getGoals(c *gin.Context) {
	userID := c.GetInt("user_id")

	g, err := h.store.userGoals(c.Request.Context(), userID)
	if errors.Is(err, errNotFound) {
		apiError(c, http.StatusNotFound, "goals not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch goals")
		return
	}

	c.JSON(http.StatusOK, g)
}

// goalOption is one entry of GET /api/goals/options. Infeasible goals are
// listed with Error set instead of targets.
type goalOption struct {
	Goal    nutrition.Goal     `json:"goal"`
	Targets *nutrition.Targets `json:"targets"`
	Error   string             `json:"error,omitempty"`
}

// getGoalOptions computes targets for every goal from the saved details
// without persisting anything, so the client can present the choice.
// GET /api/goals/options.
func (h *Handler) getGoalOptions(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := h.profileFor(c, userID)
	if err != nil {
		h.targetsError(c, err)
		return
	}
	maintenance, err := nutrition.EstimateMaintenanceCalories(p)
	if err != nil {
		h.targetsError(c, err)
		return
	}

	options := make([]goalOption, 0, len(nutrition.Goals()))
	for _, goal := range nutrition.Goals() {
		t, err := nutrition.ComputeNutritionTargets(maintenance, goal, p.WeightKg)
		if err != nil {
			h.metrics.calculatorRejected(err)
			options = append(options, goalOption{Goal: goal, Error: err.Error()})
			continue
		}
		options = append(options, goalOption{Goal: goal, Targets: &t})
	}

	c.JSON(http.StatusOK, gin.H{"maintenance_calories": maintenance, "options": options})
}

// selectGoal computes targets for the chosen goal and saves them.
// POST /api/goals. Body: { "goal": "maintain" | "cut" | "bulk" }.
func (h *Handler) selectGoal(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body selectGoalRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		if errors.Is(err, nutrition.ErrInvalidGoal) {
			h.targetsError(c, err)
			return
		}
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Goal == 0 {
		apiError(c, http.StatusBadRequest, "goal is required")
		return
	}

	p, err := h.profileFor(c, userID)
	if err != nil {
		h.targetsError(c, err)
		return
	}
	targets, err := nutrition.ForProfile(p, body.Goal)
	if err != nil {
		h.targetsError(c, err)
		return
	}
	h.metrics.targetsSaved(body.Goal)

	g, err := h.store.upsertUserGoals(c.Request.Context(), goalsFromTargets(userID, body.Goal, targets))
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save goals")
		return
	}

	c.JSON(http.StatusCreated, g)
}
