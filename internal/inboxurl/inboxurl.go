// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inboxurl rewrites the dashboard's secret login URL to select a
// date range.
package inboxurl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/inbox-digest/internal/daterange"
)

// ErrInvalidURLFormat is returned when a URL carries the secret neither as
// a /login/KEY path segment nor as a sha_key query parameter.
var ErrInvalidURLFormat = errors.New("invalid secret URL format")

const (
	keyParam  = "sha_key"
	dateParam = "date"
	loginPath = "/login"

	// ISOLayout is the default date encoding.
	ISOLayout = "2006-01-02"

	// RangeSeparator joins start and end in the date parameter.
	RangeSeparator = ".."
)

// Resolver builds dated URLs from one secret URL.
type Resolver struct {
	// Base is the secret login URL.
	Base string

	// Layout is the Go time layout of the date parameter. Empty means
	// ISOLayout.
	Layout string
}

// Resolve returns Base rewritten to select r.
func (rs Resolver) Resolve(r daterange.Range) (string, error) {
	return build(rs.Base, r, rs.Layout)
}

// BuildDatedURL rewrites base to select r using ISO dates. Any date
// parameter already present is replaced, so applying it to its own output
// leaves exactly one date parameter.
func BuildDatedURL(base string, r daterange.Range) (string, error) {
	return build(base, r, ISOLayout)
}

// EncodeRange renders r as the date parameter value: one date for a
// single day, otherwise start..end.
func EncodeRange(r daterange.Range, layout string) string {
	if layout == "" {
		layout = ISOLayout
	}
	if r.IsSingle() {
		return r.Start().Format(layout)
	}
	return r.Start().Format(layout) + RangeSeparator + r.End().Format(layout)
}

func build(base string, r daterange.Range, layout string) (string, error) {
	u, key, err := parseSecret(base)
	if err != nil {
		return "", err
	}

	params := []string{keyParam + "=" + url.QueryEscape(key)}
	for _, p := range splitQuery(u.RawQuery) {
		name := paramName(p)
		if name == keyParam || name == dateParam {
			continue
		}
		params = append(params, p)
	}
	params = append(params, dateParam+"="+url.QueryEscape(EncodeRange(r, layout)))

	out := url.URL{
		Scheme:   u.Scheme,
		User:     u.User,
		Host:     u.Host,
		Path:     loginPath,
		RawQuery: strings.Join(params, "&"),
		Fragment: u.Fragment,
	}
	return out.String(), nil
}

// SecretKey returns the login secret embedded in raw.
func SecretKey(raw string) (string, error) {
	_, key, err := parseSecret(raw)
	return key, err
}

// DateParam returns the value of the date parameter in raw, or "" when the
// URL has none. The value parses with daterange.ParseRange.
func DateParam(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}
	q, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return "", fmt.Errorf("parsing query: %w", err)
	}
	return q.Get(dateParam), nil
}

// Redact masks the secret in raw for display. URLs without a recognizable
// secret are returned unchanged.
func Redact(raw string) string {
	_, key, err := parseSecret(raw)
	if err != nil || key == "" {
		return raw
	}
	mask := "****"
	if len(key) > 8 {
		mask = key[:4] + mask
	}
	return strings.ReplaceAll(raw, url.QueryEscape(key), mask)
}

// parseSecret finds the secret in either /login/KEY or ?sha_key=KEY form.
func parseSecret(raw string) (*url.URL, string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidURLFormat, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, "", fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidURLFormat, raw)
	}

	if q, err := url.ParseQuery(u.RawQuery); err == nil {
		if key := q.Get(keyParam); key != "" {
			return u, key, nil
		}
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(segments); i++ {
		if segments[i] == "login" && segments[i+1] != "" {
			return u, segments[i+1], nil
		}
	}

	return nil, "", fmt.Errorf("%w: no /login/KEY segment or %s parameter", ErrInvalidURLFormat, keyParam)
}

func splitQuery(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, "&") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func paramName(p string) string {
	name, _, _ := strings.Cut(p, "=")
	if n, err := url.QueryUnescape(name); err == nil {
		return n
	}
	return name
}
