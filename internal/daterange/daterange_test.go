// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package daterange

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, text string) Range {
	t.Helper()
	r, err := ParseRange(text)
	require.NoError(t, err)
	return r
}

func TestParseDateFormatEquivalence(t *testing.T) {
	inputs := []string{"2025-10-31", "10-31-2025", "2025/10/31", "10/31/2025", "20251031", "  2025-10-31\t"}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got, err := ParseDate(in)
			require.NoError(t, err)
			assert.True(t, got.Equal(day(2025, 10, 31)), "got %v", got)
		})
	}
}

func TestParseDateInvalid(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2025-13-01", "31-10-2025", "2025.10.31", "2025-02-30"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseDate(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDateFormat))
			assert.Contains(t, err.Error(), "YYYY-MM-DD")
		})
	}
}

func TestParseRangeSeparators(t *testing.T) {
	for _, sep := range Separators {
		t.Run(sep, func(t *testing.T) {
			r := mustRange(t, "2025-10-31"+sep+"2025-11-02")
			assert.Equal(t, day(2025, 10, 31), r.Start())
			assert.Equal(t, day(2025, 11, 2), r.End())
			assert.Equal(t, 3, r.Days())
		})
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantStart time.Time
		wantEnd   time.Time
		wantErr   error
	}{
		{"single date", "2025-10-31", day(2025, 10, 31), day(2025, 10, 31), nil},
		{"mixed layouts", "10/30/2025 to 20251101", day(2025, 10, 30), day(2025, 11, 1), nil},
		{"padded sides", " 2025-10-30 ..  2025-10-31 ", day(2025, 10, 30), day(2025, 10, 31), nil},
		{"same day range", "2025-10-31~2025-10-31", day(2025, 10, 31), day(2025, 10, 31), nil},
		{"reversed", "2025-11-02 to 2025-10-31", time.Time{}, time.Time{}, ErrReversedRange},
		{"bad side", "2025-10-31 to soon", time.Time{}, time.Time{}, ErrInvalidDateFormat},
		{"empty side", "2025-10-31..", time.Time{}, time.Time{}, ErrInvalidDateFormat},
		{"garbage", "last week", time.Time{}, time.Time{}, ErrInvalidDateFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRange(tt.in)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "err = %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, r.Start())
			assert.Equal(t, tt.wantEnd, r.End())
		})
	}
}

func TestRangeAccessors(t *testing.T) {
	single := Single(time.Date(2025, 10, 31, 17, 45, 0, 0, time.FixedZone("JST", 9*3600)))
	assert.True(t, single.IsSingle())
	assert.Equal(t, 1, single.Days())
	assert.Equal(t, "2025-10-31", single.String())
	assert.Equal(t, []time.Time{day(2025, 10, 31)}, single.Dates())

	r := mustRange(t, "2025-10-30 to 2025-11-02")
	assert.False(t, r.IsSingle())
	assert.Equal(t, "2025-10-30 to 2025-11-02", r.String())
	assert.Equal(t, []time.Time{
		day(2025, 10, 30), day(2025, 10, 31), day(2025, 11, 1), day(2025, 11, 2),
	}, r.Dates())
}

func TestRangeDaysLongSpan(t *testing.T) {
	r := mustRange(t, "1500-01-01 to 2025-01-01")
	assert.Equal(t, 191754, r.Days())
	assert.Len(t, r.Dates(), r.Days())
}

func TestNewReversed(t *testing.T) {
	_, err := New(day(2025, 2, 1), day(2025, 1, 1))
	assert.ErrorIs(t, err, ErrReversedRange)
}
