// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package daterange

import (
	"fmt"
	"strings"
	"time"
)

// Layouts lists the accepted single-date layouts in the order they are
// tried. The first layout that parses wins.
var Layouts = []string{
	"2006-01-02", // YYYY-MM-DD
	"01-02-2006", // MM-DD-YYYY
	"2006/01/02", // YYYY/MM/DD
	"01/02/2006", // MM/DD/YYYY
	"20060102",   // YYYYMMDD
}

// Separators lists the accepted range separators in the order they are
// tried.
var Separators = []string{" to ", ":", "..", "~"}

var supportedFormats = "YYYY-MM-DD, MM-DD-YYYY, YYYY/MM/DD, MM/DD/YYYY, YYYYMMDD"

// ParseDate parses one date in any of Layouts. The result is at UTC
// midnight.
func ParseDate(text string) (time.Time, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty date (supported: %s)", ErrInvalidDateFormat, supportedFormats)
	}
	for _, layout := range Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q (supported: %s)", ErrInvalidDateFormat, s, supportedFormats)
}

// ParseRange parses a single date or a range "A<sep>B" where sep is the
// first of Separators present in the text. A single date yields a
// zero-width range.
func ParseRange(text string) (Range, error) {
	s := strings.TrimSpace(text)
	for _, sep := range Separators {
		left, right, ok := strings.Cut(s, sep)
		if !ok {
			continue
		}
		start, err := ParseDate(left)
		if err != nil {
			return Range{}, fmt.Errorf("parsing range start: %w", err)
		}
		end, err := ParseDate(right)
		if err != nil {
			return Range{}, fmt.Errorf("parsing range end: %w", err)
		}
		return New(start, end)
	}

	day, err := ParseDate(s)
	if err != nil {
		return Range{}, err
	}
	return Single(day), nil
}
