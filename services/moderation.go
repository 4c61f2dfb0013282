package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// Moderation decisions.
type Decision string

const (
	DecisionAccept Decision = "ACCEPT"
	DecisionFlag   Decision = "FLAG"
	DecisionReject Decision = "REJECT"
)

// ModerationResult is the gate's reduction of the classifier's answer.
type ModerationResult struct {
	Decision          Decision `json:"decision"`
	Reason            string   `json:"reason"`
	FlaggedCategories []string `json:"flaggedCategories"`
}

// Moderator classifies user-submitted text before it is persisted. It is
// a pure function of the text; implementations hold no per-call state.
type Moderator interface {
	Moderate(ctx context.Context, text string) ModerationResult
}

const moderationPrompt = `Evaluate the following content for a public debate platform and decide whether it should be:
1. ACCEPT (appropriate content)
2. FLAG (questionable but not severe content)
3. REJECT (offensive, dangerous or illegal content)

Rules:
- Reject content with hate, discrimination, threats or dangerous information
- Flag vulgar language, mild insults or unconstructive content
- Accept controversial but respectful opinions

Content to evaluate: %q

Answer in JSON with this structure:
{
  "decision": "ACCEPT|FLAG|REJECT",
  "reason": "Detailed reason for the decision",
  "flaggedCategories": ["relevant categories"]
}`

// textGenerator is the single model call the moderator depends on; tests
// substitute a canned implementation.
type textGenerator interface {
	generate(ctx context.Context, prompt string) (string, error)
}

// GeminiModerator classifies text with the Gemini API. Classifier
// unavailability or a malformed answer never blocks a post: the gate
// fails open with an ACCEPT carrying a diagnostic reason.
type GeminiModerator struct {
	gen textGenerator
	log *logrus.Logger
}

// NewGeminiModerator creates the production moderator.
func NewGeminiModerator(ctx context.Context, apiKey, model string, log *logrus.Logger) (*GeminiModerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiModerator{gen: &geminiGenerator{client: client, model: model}, log: log}, nil
}

func failOpen(reason string) ModerationResult {
	return ModerationResult{
		Decision:          DecisionAccept,
		Reason:            reason,
		FlaggedCategories: []string{},
	}
}

// Moderate blocks until the classifier answers or its client times out.
func (m *GeminiModerator) Moderate(ctx context.Context, text string) ModerationResult {
	raw, err := m.gen.generate(ctx, fmt.Sprintf(moderationPrompt, text))
	if err != nil {
		m.log.WithError(err).Warn("moderation service unreachable")
		return failOpen("moderation service error, manual review required")
	}

	result, err := parseModerationResponse(raw)
	if err != nil {
		m.log.WithError(err).Warn("unparseable moderation response")
		return failOpen("failed to process moderation response, manual review required")
	}
	return result
}

// parseModerationResponse extracts the JSON object from the model output,
// tolerating markdown fences and surrounding prose.
func parseModerationResponse(raw string) (ModerationResult, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return ModerationResult{}, fmt.Errorf("no JSON object in response")
	}

	var result ModerationResult
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &result); err != nil {
		return ModerationResult{}, fmt.Errorf("failed to unmarshal moderation response: %w", err)
	}

	switch result.Decision {
	case DecisionAccept, DecisionFlag, DecisionReject:
	default:
		return ModerationResult{}, fmt.Errorf("unknown moderation decision %q", result.Decision)
	}
	if result.FlaggedCategories == nil {
		result.FlaggedCategories = []string{}
	}
	return result, nil
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

func (g *geminiGenerator) generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			return string(text), nil
		}
	}
	return "", fmt.Errorf("no text part in model response")
}
