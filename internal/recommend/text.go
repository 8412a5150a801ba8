// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"regexp"
	"strings"
	"unicode"
)

// combinedDelimiter separates title and authors in a header link.
const combinedDelimiter = " | "

// etAlRe matches the "et al." marker, with or without the trailing period.
var etAlRe = regexp.MustCompile(`(?i)\bet\.?\s+al\b\.?`)

// nameSplitRe splits an author list on commas, semicolons, ampersands and
// the word "and".
var nameSplitRe = regexp.MustCompile(`\s*(?:,|;|&|\band\b)\s*`)

// particles are lowercase name parts accepted inside an author name.
var particles = map[string]bool{
	"van": true, "von": true, "der": true, "den": true, "de": true, "del": true,
	"da": true, "di": true, "du": true, "la": true, "le": true, "dos": true, "bin": true,
}

// labels are link texts that never name a paper.
var labels = map[string]bool{
	"pdf": true, "html": true, "arxiv": true, "abs": true, "abstract": true,
	"code": true, "github": true, "project page": true, "bibtex": true,
	"share": true, "view pdf": true, "show abstract": true, "read more": true,
}

// normalizeSpace collapses runs of whitespace into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// splitCombined splits "Title | Authors" at the last delimiter. It reports
// false unless both sides are present and the right side reads as authors.
func splitCombined(text string) (title, authors string, ok bool) {
	i := strings.LastIndex(text, combinedDelimiter)
	if i < 0 {
		return "", "", false
	}
	title = strings.TrimSpace(text[:i])
	authors = strings.TrimSpace(text[i+len(combinedDelimiter):])
	if title == "" || authors == "" || !isAuthorList(authors, true) {
		return "", "", false
	}
	return title, authors, true
}

// isAuthorList reports whether text reads as a list of person names: it
// carries "et al." or splits into names of two to four capitalized tokens.
// A strict check needs at least two names; a lenient one accepts a single
// name.
func isAuthorList(text string, lenient bool) bool {
	t := normalizeSpace(text)
	if t == "" || isURL(t) || strings.Contains(t, combinedDelimiter) {
		return false
	}
	if etAlRe.MatchString(t) {
		return true
	}

	var names int
	for _, part := range nameSplitRe.Split(t, -1) {
		if part == "" {
			continue
		}
		if !isPersonName(part) {
			return false
		}
		names++
	}
	if lenient {
		return names >= 1
	}
	return names >= 2
}

func isPersonName(s string) bool {
	tokens := strings.Fields(s)
	if len(tokens) < 2 || len(tokens) > 4 {
		return false
	}
	capitalized := 0
	for _, tok := range tokens {
		if particles[strings.ToLower(tok)] {
			continue
		}
		r := []rune(tok)
		if !unicode.IsUpper(r[0]) {
			return false
		}
		for _, c := range r {
			if unicode.IsDigit(c) {
				return false
			}
		}
		capitalized++
	}
	return capitalized >= 2
}

// isTitle reports whether text reads as a paper title: title-shaped, not
// an author list, and not a combined text whose right side is an author
// list of two or more names.
func isTitle(text string) bool {
	t := normalizeSpace(text)
	if !titleShaped(t) {
		return false
	}
	if _, a, ok := splitCombined(t); ok && isAuthorList(a, false) {
		return false
	}
	return !isAuthorList(t, false)
}

// titleShaped reports whether text has the shape of a title, ignoring
// whether it could also be read as names: not a URL or short label, and
// at least three words or twenty characters.
func titleShaped(t string) bool {
	if t == "" || isURL(t) || labels[strings.ToLower(strings.Trim(t, " .:"))] {
		return false
	}
	return len(strings.Fields(t)) >= 3 || len([]rune(t)) >= 20
}

// separators counts the name separators in text.
func separators(text string) int {
	return len(nameSplitRe.FindAllStringIndex(text, -1))
}

func isURL(s string) bool {
	l := strings.ToLower(s)
	return strings.Contains(l, "://") || strings.HasPrefix(l, "www.")
}

// SplitAuthors splits an author list on commas, semicolons and "and". A
// trailing "et al." is kept as its own final entry.
func SplitAuthors(text string) []string {
	t := normalizeSpace(text)
	if t == "" {
		return []string{}
	}

	etAl := false
	if loc := etAlRe.FindStringIndex(t); loc != nil {
		etAl = true
		t = strings.TrimSpace(t[:loc[0]] + t[loc[1]:])
	}

	authors := []string{}
	for _, part := range nameSplitRe.Split(t, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			authors = append(authors, part)
		}
	}
	if etAl {
		authors = append(authors, "et al.")
	}
	return authors
}
