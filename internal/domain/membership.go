package domain

import "time"

// MembershipStatus subscription status of a user membership
type MembershipStatus string

const (
	MembershipActive   MembershipStatus = "active"
	MembershipCanceled MembershipStatus = "canceled"
	MembershipPastDue  MembershipStatus = "past_due"
	MembershipUnpaid   MembershipStatus = "unpaid"
)

// Membership holds the subscription state of a user, including the daily
// free-entry benefit counters
type Membership struct {
	UserID               int64
	Status               MembershipStatus
	CurrentPeriodEnd     *time.Time
	FreeEntriesUsedToday int
	LastFreeEntryDate    *time.Time // Date only, counters reset on day change

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the membership is active and not past its period end
func (m *Membership) IsActive(now time.Time) bool {
	if m.Status != MembershipActive {
		return false
	}
	if m.CurrentPeriodEnd == nil {
		return false
	}
	return m.CurrentPeriodEnd.After(now)
}

// ConsumeFreeEntry tries to consume the daily free-entry benefit for today.
// The counter resets when the stored date differs from today. Returns true
// when the benefit was granted; at most one grant per calendar day.
func (m *Membership) ConsumeFreeEntry(now time.Time) bool {
	if !m.IsActive(now) {
		return false
	}

	today := truncateToDate(now)
	if m.LastFreeEntryDate == nil || !truncateToDate(*m.LastFreeEntryDate).Equal(today) {
		m.FreeEntriesUsedToday = 0
		m.LastFreeEntryDate = &today
	}

	if m.FreeEntriesUsedToday >= MaxFreeEntriesPerDay {
		return false
	}

	m.FreeEntriesUsedToday++
	return true
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
