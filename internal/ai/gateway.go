package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"tg-aimod/internal/logger"
)

const (
	// ModerationSystemPrompt instructs the model to judge a single group message.
	ModerationSystemPrompt = `You are an AI moderator for a Telegram group chat.

Follow:
1. Universal safety rules
2. Custom group rules provided

Actions:
- allow
- warn
- mute
- ban
- delete

Return ONLY a JSON:
{
 "action": "...",
 "reason": "...",
 "category": "...",
 "severity": 1-5,
 "should_delete": true/false
}`

	// AppealSystemPrompt instructs the model to judge a ban appeal.
	AppealSystemPrompt = `You review Telegram ban appeals.

Approve if:
- user is genuinely sorry
- promises to follow rules

Reject if:
- still abusive
- fake apology
- trolling

Return only JSON:
{
 "approve": true/false,
 "reason": "..."
}`
)

// generator is the minimal model surface the gateway needs, so tests can
// substitute a stub for the Gemini client.
type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gateway wraps the Gemini API behind the Classifier contract. Its methods
// never return an error: failures degrade to the documented defaults.
type Gateway struct {
	moderation generator
	appeal     generator
	maxRetries uint64
}

// NewGateway builds a Gateway backed by the Gemini API
func NewGateway(ctx context.Context, apiKey, model string) (*Gateway, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Gateway{
		moderation: newGeminiGenerator(client, model),
		appeal:     newGeminiGenerator(client, model),
		maxRetries: 2,
	}, nil
}

// ModerateMessage classifies a message. Fail-open: any failure yields the
// allow verdict so a classifier outage never blocks chat.
func (g *Gateway) ModerateMessage(ctx context.Context, text string, author AuthorRef, group GroupRef, rulesText string) Verdict {
	username := author.FirstName
	if author.Username != "" {
		username = "@" + author.Username
	}
	chatTitle := group.Title
	if chatTitle == "" {
		chatTitle = fmt.Sprintf("%d", group.ID)
	}

	prompt := fmt.Sprintf(`%s

GROUP RULES:
%s

CHAT:
%s

USER:
%s (ID: %d)

MESSAGE:
%s`, ModerationSystemPrompt, rulesText, chatTitle, username, author.ID, text)

	raw, err := g.generateWithRetry(ctx, g.moderation, prompt)
	if err != nil {
		logger.Warningf("moderation classification failed, defaulting to allow: %v", err)
		return DefaultVerdict()
	}

	var verdict Verdict
	if err := sonic.Unmarshal([]byte(raw), &verdict); err != nil {
		logger.Warningf("malformed moderation verdict %q: %v", raw, err)
		return DefaultVerdict()
	}
	if !ValidAction(verdict.Action) || verdict.Severity < 1 || verdict.Severity > 5 {
		logger.Warningf("out-of-contract moderation verdict: %+v", verdict)
		return DefaultVerdict()
	}
	return verdict
}

// EvaluateAppeal judges an appeal. Fail-closed: any failure yields a
// rejection so an outage cannot auto-clear bans.
func (g *Gateway) EvaluateAppeal(ctx context.Context, text string) AppealDecision {
	prompt := fmt.Sprintf(`%s

USER APPEAL:
%s`, AppealSystemPrompt, text)

	raw, err := g.generateWithRetry(ctx, g.appeal, prompt)
	if err != nil {
		logger.Warningf("appeal evaluation failed, defaulting to reject: %v", err)
		return DefaultAppealDecision()
	}

	var decision AppealDecision
	if err := sonic.Unmarshal([]byte(raw), &decision); err != nil {
		logger.Warningf("malformed appeal decision %q: %v", raw, err)
		return DefaultAppealDecision()
	}
	return decision
}

// generateWithRetry retries transient API failures with exponential backoff
// before giving up and letting the caller fall back to a default.
func (g *Gateway) generateWithRetry(ctx context.Context, gen generator, prompt string) (string, error) {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(500*time.Millisecond),
		backoff.WithMaxInterval(5*time.Second),
	), g.maxRetries), ctx)

	return backoff.RetryWithData(func() (string, error) {
		return gen.Generate(ctx, prompt)
	}, policy)
}

// geminiGenerator adapts a genai model to the generator seam
type geminiGenerator struct {
	model *genai.GenerativeModel
}

func newGeminiGenerator(client *genai.Client, modelName string) *geminiGenerator {
	model := client.GenerativeModel(modelName)
	model.GenerationConfig.ResponseMIMEType = "application/json"
	return &geminiGenerator{model: model}
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini call failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part type %T", resp.Candidates[0].Content.Parts[0])
	}

	return strings.TrimSpace(string(text)), nil
}
