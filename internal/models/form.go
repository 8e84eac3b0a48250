package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type CameraAngle string

const (
	AngleFront    CameraAngle = "Front View"
	AngleSide     CameraAngle = "Side View"
	AngleBack     CameraAngle = "Back View"
	AngleDiagonal CameraAngle = "45° Diagonal"
	AngleOverhead CameraAngle = "Overhead View"
)

// ParseCameraAngle maps an AI-provided label to a known angle, falling back
// to the side view.
func ParseCameraAngle(s string) CameraAngle {
	switch a := CameraAngle(strings.TrimSpace(s)); a {
	case AngleFront, AngleSide, AngleBack, AngleDiagonal, AngleOverhead:
		return a
	default:
		return AngleSide
	}
}

type CameraPosition struct {
	Angle             CameraAngle `json:"angle"`
	Distance          string      `json:"distance"`
	Height            string      `json:"height"`
	Instructions      string      `json:"instructions"`
	VisualGuidePrompt string      `json:"visual_guide_prompt"`
}

var numberedStep = regexp.MustCompile(`([^\d\s])\s*(\d+\.\s)`)

// InstructionLines splits the instructions into one line per numbered step.
// The model often returns "1. Do this 2. Do that" on a single line.
func (c CameraPosition) InstructionLines() []string {
	normalized := numberedStep.ReplaceAllString(c.Instructions, "$1\n$2")
	var lines []string
	for _, l := range strings.Split(normalized, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}

type FeedbackRating string

const (
	RatingExcellent        FeedbackRating = "Excellent"
	RatingGood             FeedbackRating = "Good"
	RatingNeedsImprovement FeedbackRating = "Needs Improvement"
	RatingPoor             FeedbackRating = "Poor"
)

// ParseFeedbackRating falls back to RatingGood for unknown labels.
func ParseFeedbackRating(s string) FeedbackRating {
	switch r := FeedbackRating(strings.TrimSpace(s)); r {
	case RatingExcellent, RatingGood, RatingNeedsImprovement, RatingPoor:
		return r
	default:
		return RatingGood
	}
}

type FormFeedback struct {
	ID          uuid.UUID      `json:"id"`
	Aspect      string         `json:"aspect"`
	Rating      FeedbackRating `json:"rating"`
	Description string         `json:"description"`
}

// FormAnalysis is a scored report for one recorded exercise.
type FormAnalysis struct {
	ID                 uuid.UUID       `json:"id"`
	ExerciseName       string          `json:"exercise_name"`
	OverallScore       int             `json:"overall_score"` // 0-100
	Analysis           string          `json:"analysis"`
	Strengths          []string        `json:"strengths"`
	Improvements       []string        `json:"improvements"`
	DetailedFeedback   []FormFeedback  `json:"detailed_feedback"`
	CameraPositionUsed *CameraPosition `json:"camera_position_used,omitempty"`
	AnalyzedAt         time.Time       `json:"analyzed_at"`
}
