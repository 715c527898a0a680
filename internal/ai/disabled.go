package ai

import "context"

// Disabled is the classifier used when no API key is configured. It
// returns the failure defaults for every call, so moderation is a no-op
// and appeals always escalate to a human once the quota is exhausted.
type Disabled struct{}

func (Disabled) ModerateMessage(ctx context.Context, text string, author AuthorRef, group GroupRef, rulesText string) Verdict {
	return DefaultVerdict()
}

func (Disabled) EvaluateAppeal(ctx context.Context, text string) AppealDecision {
	return DefaultAppealDecision()
}
