package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsEntitled(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name       string
		membership *Membership
		want       bool
	}{
		{"nil membership", nil, false},
		{"active with future expiry", &Membership{Status: MembershipStatusActive, ExpiryDate: &future}, true},
		{"active non-expiring", &Membership{Status: MembershipStatusActive}, true},
		{"active with past expiry", &Membership{Status: MembershipStatusActive, ExpiryDate: &past}, false},
		{"active expiring exactly now", &Membership{Status: MembershipStatusActive, ExpiryDate: &now}, false},
		{"cancelled with future expiry", &Membership{Status: MembershipStatusCancelled, ExpiryDate: &future}, false},
		{"expired status", &Membership{Status: MembershipStatusExpired}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.membership.IsEntitled(now))
		})
	}
}

// The stored status is never flipped by a background job; only the clock
// moving past the expiry changes the answer.
func TestIsEntitledLazyExpiry(t *testing.T) {
	expiry := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	m := &Membership{Status: MembershipStatusActive, ExpiryDate: &expiry}

	assert.True(t, m.IsEntitled(expiry.Add(-time.Second)))
	assert.False(t, m.IsEntitled(expiry.Add(time.Second)))
	assert.Equal(t, MembershipStatusActive, m.Status)
}

func TestHasAIQuota(t *testing.T) {
	assert.True(t, (&Membership{AIUsageLimit: -1, AIUsageCount: 1000000}).HasAIQuota())
	assert.True(t, (&Membership{AIUsageLimit: 10, AIUsageCount: 9}).HasAIQuota())
	assert.False(t, (&Membership{AIUsageLimit: 10, AIUsageCount: 10}).HasAIQuota())
	assert.False(t, (&Membership{AIUsageLimit: 0, AIUsageCount: 0}).HasAIQuota())
}

func TestFeatureTitlesRoundTrip(t *testing.T) {
	m := &Membership{}
	assert.NoError(t, m.SetFeatureTitles([]string{"All courses", "AI tutor"}))
	assert.Equal(t, []string{"All courses", "AI tutor"}, m.FeatureTitles())

	assert.NoError(t, m.SetFeatureTitles(nil))
	assert.Nil(t, m.FeatureTitles())
}
