package ai

import "context"

// Enforcement actions a verdict can carry
const (
	ActionAllow  = "allow"
	ActionWarn   = "warn"
	ActionMute   = "mute"
	ActionBan    = "ban"
	ActionDelete = "delete"
)

// Verdict is the classifier's structured opinion on a single message
type Verdict struct {
	Action       string `json:"action"`
	Reason       string `json:"reason"`
	Category     string `json:"category"`
	Severity     int    `json:"severity"`
	ShouldDelete bool   `json:"should_delete"`
}

// AppealDecision is the classifier's opinion on a ban appeal
type AppealDecision struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

// AuthorRef identifies the message author for prompt context
type AuthorRef struct {
	ID        int64
	Username  string
	FirstName string
}

// GroupRef identifies the group for prompt context
type GroupRef struct {
	ID    int64
	Title string
}

// Classifier turns free text into moderation verdicts. Implementations
// must not fail: any internal error degrades to the documented default.
type Classifier interface {
	// ModerateMessage classifies a group message against the group's rules.
	// Failures degrade to the allow verdict (fail-open).
	ModerateMessage(ctx context.Context, text string, author AuthorRef, group GroupRef, rulesText string) Verdict

	// EvaluateAppeal judges a ban appeal.
	// Failures degrade to a rejection (fail-closed).
	EvaluateAppeal(ctx context.Context, text string) AppealDecision
}

// DefaultVerdict is returned whenever moderation classification fails
func DefaultVerdict() Verdict {
	return Verdict{
		Action:       ActionAllow,
		Reason:       "AI error",
		Category:     "other",
		Severity:     1,
		ShouldDelete: false,
	}
}

// DefaultAppealDecision is returned whenever appeal evaluation fails
func DefaultAppealDecision() AppealDecision {
	return AppealDecision{Approve: false, Reason: "AI error"}
}

var knownActions = map[string]struct{}{
	ActionAllow:  {},
	ActionWarn:   {},
	ActionMute:   {},
	ActionBan:    {},
	ActionDelete: {},
}

// ValidAction reports whether the classifier returned a recognized action
func ValidAction(action string) bool {
	_, ok := knownActions[action]
	return ok
}
