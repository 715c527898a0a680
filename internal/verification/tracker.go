package verification

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// tokenPrefix is the deep-link payload prefix carrying the group ID
const tokenPrefix = "verify_"

// BuildToken encodes a group ID into a /start deep-link payload
func BuildToken(groupID int64) string {
	return fmt.Sprintf("%s%d", tokenPrefix, groupID)
}

// ParseToken extracts the group ID from a deep-link payload
func ParseToken(token string) (int64, error) {
	if !strings.HasPrefix(token, tokenPrefix) {
		return 0, fmt.Errorf("not a verification token: %s", token)
	}

	groupID, err := strconv.ParseInt(strings.TrimPrefix(token, tokenPrefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid verification token %q: %w", token, err)
	}
	return groupID, nil
}

type pendingKey struct {
	GroupID int64
	UserID  int64
}

// Tracker maps each muted new member to the verification prompt shown to
// them, so the prompt can be deleted once they verify. Ephemeral by design.
type Tracker struct {
	pending map[pendingKey]int
	mu      sync.Mutex
}

// NewTracker creates an empty Tracker
func NewTracker() *Tracker {
	return &Tracker{
		pending: make(map[pendingKey]int),
	}
}

// Record remembers the prompt message shown to a joining member
func (t *Tracker) Record(groupID, userID int64, promptMessageID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[pendingKey{groupID, userID}] = promptMessageID
}

// Complete pops the prompt message for the member. The second call for the
// same pair returns ok=false, making the completion flow idempotent.
func (t *Tracker) Complete(groupID, userID int64) (promptMessageID int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := pendingKey{groupID, userID}
	promptMessageID, ok = t.pending[key]
	if ok {
		delete(t.pending, key)
	}
	return promptMessageID, ok
}
