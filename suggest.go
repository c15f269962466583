package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"lg/fitin-go-api/nutrition"
)

/* ─── Request / Response types ───────────────────────────────────────── */

// suggestRequest is the request body for POST /api/meal-log/suggest.
type suggestRequest struct {
	Description string `json:"description"`
	MealType    string `json:"meal_type"`
}

// suggestionResponse is the structured nutrition data returned by the AI.
// Confidence is 1-5 indicating how accurate the estimate is.
type suggestionResponse struct {
	MealName   string  `json:"meal_name"`
	Calories   int     `json:"calories"`
	ProteinG   float64 `json:"protein_g"`
	CarbsG     float64 `json:"carbs_g"`
	FatG       float64 `json:"fat_g"`
	Confidence int     `json:"confidence"`
}

/* ─── OpenAI prompt constants ────────────────────────────────────────── */

const mealSystemPrompt = `You are a nutrition assistant. Parse the meal description and return a JSON object with:
- "meal_name" (string, cleaned up title case)
- "calories" (integer, total for the full portion)
- "protein_g" (number, grams for the full portion)
- "carbs_g" (number, grams for the full portion)
- "fat_g" (number, grams for the full portion)
- "confidence" (integer 1-5: 5=exact known nutritional data, 4=very close estimate, 3=reasonable estimate, 2=rough guess, 1=very uncertain)

Always provide your best estimate, even for unfamiliar or vague meals. Use your knowledge of similar foods to approximate. Only return {"error": "unrecognized"} if the input is not food at all (e.g. random characters, non-food objects).
Return only valid JSON, no explanation.`

// mealContextTemplate is appended when the user has saved goals, so portion
// guesses for vague descriptions lean towards the user's plan.
const mealContextTemplate = `

Context: the user follows a %s plan with a daily target of %d kcal and has %d kcal left today. This is their %s. Do not change the estimate to fit the budget; use it only to resolve ambiguous portion sizes.`

/* ─── OpenAI HTTP client ─────────────────────────────────────────────── */

// openAIMessage is a single message in the OpenAI chat completions request.
type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIRequest is the request body for the OpenAI chat completions API.
type openAIRequest struct {
	Model          string            `json:"model"`
	Messages       []openAIMessage   `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

// callOpenAI sends a chat completions request and returns the raw content string
// from the first choice. Uses raw net/http to avoid pulling in the OpenAI SDK.
func callOpenAI(ctx context.Context, messages []openAIMessage, baseURL, apiKey string) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}

	reqBody := openAIRequest{
		Model:          "gpt-4o-mini",
		Messages:       messages,
		Temperature:    0,
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return result.Choices[0].Message.Content, nil
}

/* ─── Handler ────────────────────────────────────────────────────────── */

// suggestMeal handles POST /api/meal-log/suggest.
// Accepts a meal description, calls OpenAI to parse it into structured
// nutrition data, and returns the suggestion. Nothing is saved.
func (h *Handler) suggestMeal(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Description) == "" {
		apiError(c, http.StatusBadRequest, "description is required")
		return
	}
	if req.MealType != "" && !validMealTypes[req.MealType] {
		apiError(c, http.StatusBadRequest, "meal_type must be one of: breakfast, mid-morning, lunch, snack, dinner")
		return
	}

	messages := []openAIMessage{
		{Role: "system", Content: h.buildMealPrompt(c, req.MealType)},
		{Role: "user", Content: req.Description},
	}

	content, err := callOpenAI(c.Request.Context(), messages, h.openAIBaseURL, h.openAIAPIKey)
	if err != nil {
		log.Errorf("[suggest] OpenAI error: %v", err)
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}

	// Check if the AI returned an "unrecognized" error
	var errorResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(content), &errorResp); err != nil {
		log.Errorf("[suggest] failed to parse OpenAI response: %v", err)
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}
	if errorResp.Error == "unrecognized" {
		c.JSON(http.StatusOK, gin.H{"error": "unrecognized"})
		return
	}

	var suggestion suggestionResponse
	if err := json.Unmarshal([]byte(content), &suggestion); err != nil {
		log.Errorf("[suggest] failed to parse suggestion JSON: %v", err)
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}

	// Validate that we got a usable response (at minimum, meal_name and calories)
	if suggestion.MealName == "" || suggestion.Calories <= 0 {
		c.JSON(http.StatusOK, gin.H{"error": "unrecognized"})
		return
	}

	c.JSON(http.StatusOK, suggestion)
}

// buildMealPrompt returns the meal system prompt, with the user's goal and
// remaining calories for today appended when goals are saved. Lookup failures
// fall back to the plain prompt.
func (h *Handler) buildMealPrompt(c *gin.Context, mealType string) string {
	userID := c.GetInt("user_id")

	goals, err := h.goalsOrNil(c, userID)
	goal, ok := goalFromRow(goals)
	if err != nil || !ok {
		return mealSystemPrompt
	}

	today := time.Now().Format("2006-01-02")
	rows, err := h.store.mealTotalsByDay(c.Request.Context(), userID, today, today)
	if err != nil {
		return mealSystemPrompt
	}
	eaten := 0
	for _, r := range rows {
		eaten += r.Calories
	}

	if mealType == "" {
		mealType = "meal"
	}
	return mealSystemPrompt + fmt.Sprintf(mealContextTemplate,
		goal, goals.TargetCalories, goals.TargetCalories-eaten, mealType)
}

// goalFromRow parses the stored goal type of a saved goals row.
func goalFromRow(g *userGoals) (nutrition.Goal, bool) {
	if g == nil {
		return 0, false
	}
	goal, err := nutrition.ParseGoal(g.GoalType)
	return goal, err == nil
}
