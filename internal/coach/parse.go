package coach

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/claude/repright/internal/models"
	"github.com/google/uuid"
)

// Defaults for fields the model leaves out.
const (
	defaultPlanTitle      = "Your Workout Plan"
	defaultDurationWeeks  = 4
	defaultWorkoutDay     = "Day"
	defaultWorkoutTitle   = "Workout"
	defaultWorkoutMinutes = 60
	defaultExerciseName   = "Exercise"
	defaultSets           = 3
	defaultReps           = "10"
	defaultRestSeconds    = 60
	defaultDifficulty     = "Intermediate"
	defaultScore          = 70
)

func decodeObject(content string) (map[string]any, error) {
	content = strings.TrimSpace(content)
	// Some models wrap JSON-mode output in a code fence anyway.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var obj map[string]any
	if err := json.Unmarshal([]byte(content), &obj); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: empty object", ErrInvalidResponse)
	}
	return obj, nil
}

func str(m map[string]any, key, def string) string {
	switch v := m[key].(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return def
}

func optStr(m map[string]any, key string) *string {
	s, ok := m[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	s = strings.TrimSpace(s)
	return &s
}

func num(m map[string]any, key string, def int) int {
	switch v := m[key].(type) {
	case float64:
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return int(math.Round(v))
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func boolean(m map[string]any, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

func strList(m map[string]any, key string) []string {
	out := []string{}
	items, _ := m[key].([]any)
	for _, it := range items {
		if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func objList(m map[string]any, key string) []map[string]any {
	var out []map[string]any
	items, _ := m[key].([]any)
	for _, it := range items {
		if o, ok := it.(map[string]any); ok {
			out = append(out, o)
		}
	}
	return out
}

func parsePlan(m map[string]any) models.WorkoutPlan {
	p := models.WorkoutPlan{
		Title:         str(m, "title", defaultPlanTitle),
		Description:   str(m, "description", ""),
		DurationWeeks: num(m, "durationWeeks", defaultDurationWeeks),
		Workouts:      []models.Workout{},
	}
	for _, wm := range objList(m, "workouts") {
		p.Workouts = append(p.Workouts, parseWorkout(wm))
	}
	return p
}

func parseWorkout(m map[string]any) models.Workout {
	w := models.Workout{
		Day:               str(m, "day", defaultWorkoutDay),
		Title:             str(m, "title", defaultWorkoutTitle),
		EstimatedDuration: num(m, "estimatedDuration", defaultWorkoutMinutes),
		Exercises:         []models.Exercise{},
	}
	for _, em := range objList(m, "exercises") {
		w.Exercises = append(w.Exercises, parseExercise(em))
	}
	return w
}

func parseExercise(m map[string]any) models.Exercise {
	e := models.Exercise{
		Name:         str(m, "name", defaultExerciseName),
		Sets:         num(m, "sets", defaultSets),
		Reps:         str(m, "reps", defaultReps),
		RestTime:     num(m, "restTime", defaultRestSeconds),
		Notes:        optStr(m, "notes"),
		MuscleGroups: strList(m, "muscleGroups"),
		Difficulty:   str(m, "difficulty", defaultDifficulty),
	}
	if e.Sets < 1 {
		e.Sets = defaultSets
	}
	if e.RestTime < 0 {
		e.RestTime = defaultRestSeconds
	}
	return e
}

func parseCustomization(m map[string]any) models.CustomizationResponse {
	r := models.CustomizationResponse{
		IsHarmful:      boolean(m, "isHarmful"),
		WarningMessage: optStr(m, "warningMessage"),
		Explanation:    str(m, "explanation", ""),
	}
	if r.IsHarmful {
		if r.WarningMessage == nil {
			msg := "This change could be harmful to your progress."
			r.WarningMessage = &msg
		}
		return r
	}
	if pm, ok := m["modifiedPlan"].(map[string]any); ok {
		plan := parsePlan(pm)
		r.ModifiedPlan = &plan
	}
	return r
}

func parseCameraPosition(m map[string]any) models.CameraPosition {
	return models.CameraPosition{
		Angle:             models.ParseCameraAngle(str(m, "angle", string(models.AngleSide))),
		Distance:          str(m, "distance", "6-8 feet away"),
		Height:            str(m, "height", "Waist height"),
		Instructions:      str(m, "instructions", "Position camera at side view"),
		VisualGuidePrompt: str(m, "visualGuidePrompt", "Camera setup diagram"),
	}
}

func parseFormAnalysis(m map[string]any) models.FormAnalysis {
	a := models.FormAnalysis{
		ID:               uuid.New(),
		OverallScore:     min(100, max(0, num(m, "overallScore", defaultScore))),
		Analysis:         str(m, "analysis", "Form analysis complete"),
		Strengths:        strList(m, "strengths"),
		Improvements:     strList(m, "improvements"),
		DetailedFeedback: []models.FormFeedback{},
	}
	for _, fm := range objList(m, "detailedFeedback") {
		a.DetailedFeedback = append(a.DetailedFeedback, models.FormFeedback{
			ID:          uuid.New(),
			Aspect:      str(fm, "aspect", "General"),
			Rating:      models.ParseFeedbackRating(str(fm, "rating", string(models.RatingGood))),
			Description: str(fm, "description", ""),
		})
	}
	return a
}
