package coach

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/claude/repright/internal/models"
)

const (
	planSystemPrompt = "You are an expert fitness trainer and exercise physiologist. Create personalized, safe, and effective workout plans based on user profiles. Always respond in valid JSON format."

	customizeSystemPrompt = "You are an expert fitness trainer and exercise physiologist. When users request workout plan changes, you must evaluate if the change is harmful to their development. If harmful, provide a clear warning and explanation. If safe, create a modified plan. Always respond in valid JSON format."

	cameraSystemPrompt = "You are an expert in exercise biomechanics and video analysis. Provide precise camera positioning guidance for optimal form assessment."

	formSystemPrompt = "You are an expert fitness trainer specializing in form correction and injury prevention. Analyze exercise videos with precision and provide actionable feedback."
)

const planSchema = `{
    "title": "string",
    "description": "string",
    "durationWeeks": number,
    "workouts": [
        {
            "day": "string (e.g., Monday, Day 1)",
            "title": "string",
            "estimatedDuration": number (minutes),
            "exercises": [
                {
                    "name": "string",
                    "sets": number,
                    "reps": "string (e.g., '8-12', '30 seconds')",
                    "restTime": number (seconds),
                    "notes": "string or null",
                    "muscleGroups": ["array of strings"],
                    "difficulty": "string"
                }
            ]
        }
    ]
}`

func joinLabels[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func planPrompt(p models.UserProfile, notes string) string {
	days := p.WorkoutFrequency.DaysPerWeek()
	frequency := fmt.Sprintf("Create exactly %d workout days per week.", days)
	if days == models.DaysPerWeek {
		frequency = "The user wants to work out every day. Create a smart 7-day routine with active recovery days. " +
			"Include lighter activities like yoga, stretching, or light cardio on recovery days. List the days Monday through Sunday."
	}
	restrictions := "None"
	if len(p.Restrictions) > 0 {
		restrictions = strings.Join(p.Restrictions, ", ")
	}

	var b strings.Builder
	b.WriteString("Create a personalized workout plan with the following specifications:\n\n")
	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Age: %d\n", p.Age)
	fmt.Fprintf(&b, "- Fitness Level: %s\n", p.FitnessLevel)
	fmt.Fprintf(&b, "- Goals: %s\n", joinLabels(p.Goals))
	fmt.Fprintf(&b, "- Workout Frequency: %s\n", p.WorkoutFrequency)
	fmt.Fprintf(&b, "- Restrictions: %s\n", restrictions)
	fmt.Fprintf(&b, "- Preferred Workout Types: %s\n", joinLabels(p.PreferredWorkoutTypes))
	fmt.Fprintf(&b, "- Available Equipment: %s\n", joinLabels(p.AvailableEquipment))
	if notes = strings.TrimSpace(notes); notes != "" {
		fmt.Fprintf(&b, "- Additional Notes: %s\n", notes)
	}
	fmt.Fprintf(&b, "\nIMPORTANT: %s\n\n", frequency)
	b.WriteString("Create a comprehensive workout plan with:\n")
	b.WriteString("- Appropriate exercises for their level and goals\n")
	b.WriteString("- Proper progression and rest days (if not working out 7 days)\n")
	b.WriteString("- Clear sets, reps, and rest periods\n\n")
	b.WriteString("Respond in JSON format:\n")
	b.WriteString(planSchema)
	return b.String()
}

func customizePrompt(plan models.WorkoutPlan, request string) (string, error) {
	current, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding current plan: %w", err)
	}
	return fmt.Sprintf(`The user wants to change their workout plan.

Requested change: %s

Current plan:
%s

Decide whether the change would be harmful to the user's development or safety
(for example removing all rest days, extreme volume jumps, or skipping major
muscle groups for weeks). If it is harmful, do not modify the plan.

Respond in JSON format:
{
    "isHarmful": boolean,
    "warningMessage": "string or null (required when harmful)",
    "explanation": "string describing what changed or why it was refused",
    "modifiedPlan": %s or null when harmful
}`, strings.TrimSpace(request), current, planSchema), nil
}

func cameraPrompt(exercise string) string {
	return fmt.Sprintf(`For the exercise "%s", determine the OPTIMAL camera position for form analysis.

Consider:
- Which angle shows the most critical form elements
- What distance and height provides the clearest view
- How to frame the entire movement

Respond in JSON format with:
{
    "angle": "Front View" | "Side View" | "Back View" | "45° Diagonal" | "Overhead View",
    "distance": "distance description",
    "height": "height description",
    "instructions": "clear, step-by-step setup instructions",
    "visualGuidePrompt": "a detailed prompt for generating an illustration showing camera placement"
}`, exercise)
}

func formPrompt(exercise string, camera models.CameraPosition) string {
	return fmt.Sprintf(`Analyze this exercise form for: %s
Camera Position: %s at %s, %s

Provide a detailed form analysis including:
1. Overall score (0-100)
2. General analysis summary
3. What they're doing well (strengths)
4. What needs improvement
5. Specific feedback for key aspects (back position, knee alignment, hip hinge, etc.)

Be encouraging but honest. Prioritize safety and injury prevention.

Respond in JSON format:
{
    "overallScore": number,
    "analysis": "string",
    "strengths": ["array of strings"],
    "improvements": ["array of strings"],
    "detailedFeedback": [
        {
            "aspect": "string",
            "rating": "Excellent" | "Good" | "Needs Improvement" | "Poor",
            "description": "string"
        }
    ]
}`, exercise, camera.Angle, camera.Height, camera.Distance)
}
