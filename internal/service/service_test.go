package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"tg-aimod/internal/config"
	"tg-aimod/internal/models"
	"tg-aimod/internal/notices"
)

func newInMemoryServices() {
	Initialize(&config.Config{})
}

func TestRuleServiceKeepsInsertionOrder(t *testing.T) {
	newInMemoryServices()

	Rules.Append(-100, "no spam")
	Rules.Append(-100, "no links")
	Rules.Append(-200, "english only")

	assert.Equal(t, []string{"no spam", "no links"}, Rules.ListRules(-100))
	assert.Equal(t, []string{"english only"}, Rules.ListRules(-200))
	assert.Empty(t, Rules.ListRules(-300))
}

func TestWarningServiceCountsPerGroupAndUser(t *testing.T) {
	newInMemoryServices()

	count, err := Warnings.IncrementWarning(-100, 42)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	count, _ = Warnings.IncrementWarning(-100, 42)
	assert.Equal(t, 2, count)

	count, _ = Warnings.IncrementWarning(-200, 42)
	assert.Equal(t, 1, count, "counters are per group")
}

func TestWarningServiceResetRemovesRecord(t *testing.T) {
	newInMemoryServices()

	Warnings.IncrementWarning(-100, 42)
	Warnings.IncrementWarning(-100, 42)
	Warnings.ResetWarnings(-100, 42)

	assert.Empty(t, Warnings.ListWarnings(-100), "reset deletes the record instead of zeroing it")

	count, _ := Warnings.IncrementWarning(-100, 42)
	assert.Equal(t, 1, count, "a fresh violation starts from one")
}

func TestWarningServiceConcurrentIncrements(t *testing.T) {
	newInMemoryServices()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Warnings.IncrementWarning(-100, 42)
		}()
	}
	wg.Wait()

	warnings := Warnings.ListWarnings(-100)
	assert.Equal(t, []models.Warning{{GroupID: -100, UserID: 42, Count: 50}}, warnings)
}

func TestAllowlistServiceApproveAndRevoke(t *testing.T) {
	newInMemoryServices()

	assert.False(t, Allowlist.IsApproved(-100, 42))

	Allowlist.Approve(-100, 42)
	assert.True(t, Allowlist.IsApproved(-100, 42))
	assert.False(t, Allowlist.IsApproved(-200, 42), "approval is per group")

	Allowlist.Unapprove(-100, 42)
	assert.False(t, Allowlist.IsApproved(-100, 42))
}

func TestAllowlistServiceUnapproveAll(t *testing.T) {
	newInMemoryServices()

	Allowlist.Approve(-100, 42)
	Allowlist.Approve(-100, 43)
	Allowlist.Approve(-200, 42)

	Allowlist.UnapproveAll(-100)

	assert.False(t, Allowlist.IsApproved(-100, 42))
	assert.False(t, Allowlist.IsApproved(-100, 43))
	assert.True(t, Allowlist.IsApproved(-200, 42), "other groups unaffected")
}

func TestNoticeServiceTracksPending(t *testing.T) {
	newInMemoryServices()

	Notices.AddPendingNotice(-100, 1)
	Notices.AddPendingNotice(-100, 2)
	Notices.RemovePendingNotice(-100, 1)

	assert.Equal(t, []notices.PendingRef{{ChatID: -100, MessageID: 2}}, Notices.ListPendingNotices())
}

func TestGroupServiceUpsert(t *testing.T) {
	newInMemoryServices()

	Groups.UpsertGroup(-100, "My Group", 42)
	info := Groups.GetGroupInfo(-100)
	if assert.NotNil(t, info) {
		assert.Equal(t, "My Group", info.Title)
	}

	Groups.UpsertGroup(-100, "Renamed", 42)
	info = Groups.GetGroupInfo(-100)
	if assert.NotNil(t, info) {
		assert.Equal(t, "Renamed", info.Title)
	}
}
