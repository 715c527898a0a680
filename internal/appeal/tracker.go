package appeal

import "sync"

// Tracker holds the in-memory appeal workflow state: which groups a user is
// banned in pending appeal, plus their attempt and approval counters.
//
// All mutation goes through one mutex so concurrent bans or appeals for the
// same user cannot interleave across an await point and lose writes.
// State is process-local; a restart clears it.
type Tracker struct {
	mu        sync.Mutex
	pending   map[int64][]int64
	attempts  map[int64]int
	approvals map[int64]int
}

// NewTracker creates an empty Tracker
func NewTracker() *Tracker {
	return &Tracker{
		pending:   make(map[int64][]int64),
		attempts:  make(map[int64]int),
		approvals: make(map[int64]int),
	}
}

// TrackBan registers that the user was banned in the group. The group list
// keeps insertion order (the first tracked group is the "primary" one for
// escalation messages) and ignores duplicates.
func (t *Tracker) TrackBan(userID, groupID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, gid := range t.pending[userID] {
		if gid == groupID {
			return
		}
	}
	t.pending[userID] = append(t.pending[userID], groupID)
}

// IsPending reports whether the user has at least one ban pending appeal
func (t *Tracker) IsPending(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending[userID]) > 0
}

// Groups returns a copy of the user's tracked groups in insertion order
func (t *Tracker) Groups(userID int64) []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	groups := make([]int64, len(t.pending[userID]))
	copy(groups, t.pending[userID])
	return groups
}

// RecordAttempt bumps the user's appeal attempt counter and returns it
func (t *Tracker) RecordAttempt(userID int64) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.attempts[userID]++
	return t.attempts[userID]
}

// Attempts returns the user's appeal attempt count
func (t *Tracker) Attempts(userID int64) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts[userID]
}

// Approvals returns how many automatic approvals the user has consumed
func (t *Tracker) Approvals(userID int64) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.approvals[userID]
}

// ApproveAuto finalizes an automatic approval: the approvals counter is
// incremented and the pending groups and attempt counter are cleared.
// The approvals counter survives so the quota keeps counting across bans.
func (t *Tracker) ApproveAuto(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.approvals[userID]++
	delete(t.pending, userID)
	delete(t.attempts, userID)
}

// ClearAll wipes every piece of per-user state. Used by the human approval
// path, which resets the quota as well.
func (t *Tracker) ClearAll(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.pending, userID)
	delete(t.attempts, userID)
	delete(t.approvals, userID)
}
