// Package coach talks to the AI service that writes workout plans, reviews
// plan changes, suggests camera placement and scores exercise form.
package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/claude/repright/internal/models"
	"github.com/claude/repright/internal/observability"
	openai "github.com/sashabaranov/go-openai"
)

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("AI service is not configured")
	// ErrUpstream wraps transport and API failures.
	ErrUpstream = errors.New("AI service request failed")
	// ErrInvalidResponse means the reply could not be read as the expected JSON.
	ErrInvalidResponse = errors.New("invalid AI service response")
)

// MaxFormFrames is the number of frames sent for one form analysis.
const MaxFormFrames = 4

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client is safe for concurrent use.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4o
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	c := &Client{
		model:   cfg.Model,
		timeout: cfg.Timeout,
		now:     time.Now,
		logger:  logger,
	}
	if cfg.APIKey != "" {
		oc := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
		oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
		c.api = openai.NewClientWithConfig(oc)
	}
	return c
}

// Configured reports whether requests can be made.
func (c *Client) Configured() bool {
	return c.api != nil
}

type completion struct {
	operation   string
	system      string
	prompt      string
	images      []string // base64 JPEG
	temperature float32
	maxTokens   int
}

// complete sends one chat completion in JSON mode and returns the decoded
// object of the first choice.
func (c *Client) complete(ctx context.Context, req completion) (obj map[string]any, err error) {
	if c.api == nil {
		return nil, ErrNotConfigured
	}
	start := time.Now()
	defer func() {
		observability.RecordAIRequest(req.operation, time.Since(start), err)
		if err != nil {
			c.logger.Warn("AI request failed", "operation", req.operation, "error", err)
		}
	}()

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(req.images) == 0 {
		user.Content = req.prompt
	} else {
		user.MultiContent = []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: req.prompt}}
		for _, img := range req.images {
			user.MultiContent = append(user.MultiContent, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    "data:image/jpeg;base64," + img,
					Detail: openai.ImageURLDetailHigh,
				},
			})
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.system},
			user,
		},
		Temperature:    req.temperature,
		MaxTokens:      req.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUpstream, req.operation, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrInvalidResponse)
	}
	obj, err = decodeObject(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	c.logger.Info("AI request complete", "operation", req.operation,
		"duration", time.Since(start).String(), "total_tokens", resp.Usage.TotalTokens)
	return obj, nil
}

// GeneratePlan asks for a plan fitted to the profile. notes are optional
// extra wishes from the user.
func (c *Client) GeneratePlan(ctx context.Context, profile models.UserProfile, notes string) (models.WorkoutPlan, error) {
	obj, err := c.complete(ctx, completion{
		operation:   "generate_plan",
		system:      planSystemPrompt,
		prompt:      planPrompt(profile, notes),
		temperature: 0.7,
	})
	if err != nil {
		return models.WorkoutPlan{}, err
	}
	plan := parsePlan(obj)
	plan.EnsureIDs(c.now())
	return plan, nil
}

// CustomizePlan applies a free-text change request, or refuses it when the
// change would be harmful.
func (c *Client) CustomizePlan(ctx context.Context, plan models.WorkoutPlan, request string) (models.CustomizationResponse, error) {
	prompt, err := customizePrompt(plan, request)
	if err != nil {
		return models.CustomizationResponse{}, err
	}
	obj, err := c.complete(ctx, completion{
		operation:   "customize_plan",
		system:      customizeSystemPrompt,
		prompt:      prompt,
		temperature: 0.7,
	})
	if err != nil {
		return models.CustomizationResponse{}, err
	}
	resp := parseCustomization(obj)
	if resp.ModifiedPlan != nil {
		resp.ModifiedPlan.EnsureIDs(c.now())
	}
	return resp, nil
}

// CameraPosition recommends where to place the phone when filming exercise.
func (c *Client) CameraPosition(ctx context.Context, exercise string) (models.CameraPosition, error) {
	obj, err := c.complete(ctx, completion{
		operation:   "camera_position",
		system:      cameraSystemPrompt,
		prompt:      cameraPrompt(exercise),
		temperature: 0.5,
	})
	if err != nil {
		return models.CameraPosition{}, err
	}
	return parseCameraPosition(obj), nil
}

// AnalyzeForm scores a recorded set from its frames (base64 JPEG). At most
// MaxFormFrames frames, spread evenly over the recording, are sent.
func (c *Client) AnalyzeForm(ctx context.Context, frames []string, exercise string, camera models.CameraPosition) (models.FormAnalysis, error) {
	obj, err := c.complete(ctx, completion{
		operation:   "analyze_form",
		system:      formSystemPrompt,
		prompt:      formPrompt(exercise, camera),
		images:      SelectKeyFrames(frames, MaxFormFrames),
		temperature: 0.5,
		maxTokens:   2000,
	})
	if err != nil {
		return models.FormAnalysis{}, err
	}
	a := parseFormAnalysis(obj)
	a.ExerciseName = exercise
	a.CameraPositionUsed = &camera
	a.AnalyzedAt = c.now()
	return a, nil
}

// SelectKeyFrames picks up to n frames at even intervals, starting with the
// first.
func SelectKeyFrames[T any](frames []T, n int) []T {
	if n <= 0 {
		return nil
	}
	if len(frames) <= n {
		return frames
	}
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, frames[i*len(frames)/n])
	}
	return out
}
