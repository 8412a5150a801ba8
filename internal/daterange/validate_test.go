// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAt(t *testing.T) {
	today := time.Date(2025, 3, 1, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name        string
		in          string
		maxDays     int
		wantValid   bool
		wantWarning string
	}{
		{"today", "2025-03-01", 30, true, ""},
		{"short range", "2025-02-20 to 2025-02-28", 30, true, ""},
		{"46 day span", "2025-01-01 to 2025-02-15", 30, true, "exceeds the recommended maximum of 30 days"},
		{"default max days", "2025-01-01 to 2025-02-15", 0, true, "exceeds the recommended maximum of 30 days"},
		{"custom max days", "2025-02-01 to 2025-02-15", 10, true, "spans 15 days"},
		{"exactly max days", "2025-01-30 to 2025-02-28", 30, true, ""},
		{"future end", "2025-02-28 to 2025-03-02", 30, false, "2025-03-02 is in the future"},
		{"future single", "2025-03-02", 30, false, "in the future"},
		{"stale", "2023-06-01", 30, true, "more than a year old"},
		{"span beats staleness", "2023-01-01 to 2023-03-01", 30, true, "exceeds the recommended maximum"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustRange(t, tt.in)
			got := ValidateAt(r, tt.maxDays, today)
			assert.Equal(t, tt.wantValid, got.Valid)
			if tt.wantWarning == "" {
				assert.Empty(t, got.Warning)
			} else {
				assert.Contains(t, got.Warning, tt.wantWarning)
			}
		})
	}
}

func TestValidateUsesClock(t *testing.T) {
	orig := now
	t.Cleanup(func() { now = orig })
	now = func() time.Time { return time.Date(2025, 10, 31, 23, 59, 0, 0, time.UTC) }

	assert.True(t, Validate(mustRange(t, "2025-10-31"), 30).Valid)

	res := Validate(mustRange(t, "2025-11-01"), 30)
	assert.False(t, res.Valid)
	err := res.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestValidFutureAgainstRealClock(t *testing.T) {
	tomorrow := time.Now().AddDate(0, 0, 1)
	r := Single(tomorrow)
	assert.False(t, Validate(r, 30).Valid)
	assert.NoError(t, Validate(Single(time.Now().AddDate(0, 0, -1)), 30).Err())
}
