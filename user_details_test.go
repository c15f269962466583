package main

import (
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserDetails_NotFound(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/user-details", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "user details not found", errorMessage(t, w))
}

func TestPutUserDetails_ComputesMaintenance(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPut, "/api/user-details", referenceDetails)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode[userDetails](t, w)
	assert.Equal(t, 1, got.UserID)
	assert.Equal(t, "male", got.Sex)
	assert.Equal(t, "moderately_active", got.ActivityLevel)
	require.NotNil(t, got.ComputedBMR)
	require.NotNil(t, got.ComputedMaintenance)
	assert.InDelta(t, 1673.75, *got.ComputedBMR, 1e-9)
	assert.Equal(t, 2594, *got.ComputedMaintenance)

	w = e.do(http.MethodGet, "/api/user-details", "")
	require.Equal(t, http.StatusOK, w.Code)
	got = decode[userDetails](t, w)
	assert.Equal(t, 2594, *got.ComputedMaintenance)
}

func TestPutUserDetails_Validation(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"unknown sex", `{"age":25,"weight_kg":70,"height_cm":175,"sex":"other","activity_level":"sedentary"}`, "sex: must be one of: male, female"},
		{"unknown activity", `{"age":25,"weight_kg":70,"height_cm":175,"sex":"male","activity_level":"couch"}`, "activityLevel: must be one of: sedentary, lightly_active, moderately_active, very_active, extra_active"},
		{"too young", `{"age":12,"weight_kg":70,"height_cm":175,"sex":"male","activity_level":"sedentary"}`, "age must be between 13 and 120"},
		{"too heavy", `{"age":25,"weight_kg":301,"height_cm":175,"sex":"male","activity_level":"sedentary"}`, "weight_kg must be between 30 and 300"},
		{"too short", `{"age":25,"weight_kg":70,"height_cm":99,"sex":"male","activity_level":"sedentary"}`, "height_cm must be between 100 and 250"},
		{"missing sex", `{"age":25,"weight_kg":70,"height_cm":175,"activity_level":"sedentary"}`, "sex is required"},
		{"missing activity", `{"age":25,"weight_kg":70,"height_cm":175,"sex":"female"}`, "activity_level is required"},
		{"malformed", `{"age":`, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(http.MethodPut, "/api/user-details", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tt.msg, errorMessage(t, w))
		})
	}

	_, err := e.store.userDetails(t.Context(), 1)
	assert.ErrorIs(t, err, errNotFound, "rejected bodies must not be saved")
}

func TestPutUserDetails_RefreshesSavedGoal(t *testing.T) {
	e := newTestEnv(t)

	require.Equal(t, http.StatusOK, e.do(http.MethodPut, "/api/user-details", referenceDetails).Code)
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/goals", `{"goal":"cut"}`).Code)

	heavier := `{"age":25,"weight_kg":80,"height_cm":175,"sex":"male","activity_level":"moderately_active"}`
	require.Equal(t, http.StatusOK, e.do(http.MethodPut, "/api/user-details", heavier).Code)

	g, err := e.store.userGoals(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, "cut", g.GoalType)
	assert.Equal(t, 2749, g.MaintenanceCalories)
	assert.Equal(t, 2199, g.TargetCalories)
	assert.Equal(t, 160, g.ProteinGrams)
	assert.Equal(t, 61, g.FatGrams)
	assert.Equal(t, 252, g.CarbsGrams)
	assert.Equal(t, 2.0, testutil.ToFloat64(e.handler.metrics.targetsComputed.WithLabelValues("cut")))
}

func TestPutUserDetails_InfeasibleRefreshKeepsOldGoal(t *testing.T) {
	e := newTestEnv(t)

	require.Equal(t, http.StatusOK, e.do(http.MethodPut, "/api/user-details", referenceDetails).Code)
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/goals", `{"goal":"cut"}`).Code)

	w := e.do(http.MethodPut, "/api/user-details", lightDetails)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	g, err := e.store.userGoals(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2075, g.TargetCalories)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.handler.metrics.calculatorRejections.WithLabelValues("infeasible")))
}

func TestUserDetails_StoreFailure(t *testing.T) {
	e := newTestEnv(t)
	e.store.failWith = errors.New("connection reset")

	w := e.do(http.MethodGet, "/api/user-details", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "failed to fetch user details", errorMessage(t, w))

	w = e.do(http.MethodPut, "/api/user-details", referenceDetails)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "failed to save user details", errorMessage(t, w))
}
