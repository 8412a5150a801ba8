// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package daterange

import (
	"fmt"
	"time"
)

// DefaultMaxDays is the recommended maximum span of one dashboard request.
const DefaultMaxDays = 30

// staleDays is how far back a start date may lie before it draws a warning.
const staleDays = 365

// now is the clock Validate reads. Tests override it.
var now = time.Now

// ValidationResult is the outcome of validating a range. A valid range may
// still carry one warning.
type ValidationResult struct {
	Valid   bool
	Warning string
}

// Err returns nil for a valid result and an ErrInvalidDateRange-wrapped
// error otherwise.
func (v ValidationResult) Err() error {
	if v.Valid {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidDateRange, v.Warning)
}

// Validate checks r against today's date. See ValidateAt.
func Validate(r Range, maxDays int) ValidationResult {
	return ValidateAt(r, maxDays, now())
}

// ValidateAt checks r against the calendar date of today. The range is
// invalid only when it ends after today. Otherwise it is valid, with a
// warning when it spans more than maxDays (default 30) or starts more than
// a year before today. The span warning takes precedence.
func ValidateAt(r Range, maxDays int, today time.Time) ValidationResult {
	if maxDays <= 0 {
		maxDays = DefaultMaxDays
	}
	day := dateOf(today)

	if r.End().After(day) {
		return ValidationResult{
			Valid:   false,
			Warning: fmt.Sprintf("end date %s is in the future", r.End().Format(isoLayout)),
		}
	}

	if span := r.Days(); span > maxDays {
		return ValidationResult{
			Valid: true,
			Warning: fmt.Sprintf("date range spans %d days, which exceeds the recommended maximum of %d days; "+
				"the page may be slow to load or truncate results", span, maxDays),
		}
	}

	if r.Start().Before(day.AddDate(0, 0, -staleDays)) {
		return ValidationResult{
			Valid:   true,
			Warning: fmt.Sprintf("start date %s is more than a year old; the dashboard may not have recommendations that far back", r.Start().Format(isoLayout)),
		}
	}

	return ValidationResult{Valid: true}
}
