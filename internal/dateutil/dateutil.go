// Package dateutil formats the "printed on" stamp of a sheet.
//
// A pattern mixes tokens with literal text. Tokens are matched longest
// first:
//
//	YYYY 2026    YY 26
//	MMMM October MMM Oct  MM 10  M 10
//	dddd Sunday  ddd Sun
//	DD   08      Do 8th   D  8
//
// Text inside square brackets is copied as is: "[Day] D" gives "Day 8".
package dateutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDateFormat is returned for malformed patterns and auto values.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength bounds a pattern.
const MaxDateFormatLength = 50

// DefaultDateFormat is the pattern behind a bare "auto".
const DefaultDateFormat = "YYYY-MM-DD"

// DatePresets are named patterns usable as "auto:NAME".
var DatePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
	"sheet":    "dddd, MMMM Do YYYY",
}

type token struct {
	text   string
	format func(time.Time) string
}

var tokens = []token{
	{"YYYY", func(t time.Time) string { return t.Format("2006") }},
	{"MMMM", func(t time.Time) string { return t.Month().String() }},
	{"dddd", func(t time.Time) string { return t.Weekday().String() }},
	{"MMM", func(t time.Time) string { return t.Format("Jan") }},
	{"ddd", func(t time.Time) string { return t.Format("Mon") }},
	{"YY", func(t time.Time) string { return t.Format("06") }},
	{"MM", func(t time.Time) string { return t.Format("01") }},
	{"DD", func(t time.Time) string { return t.Format("02") }},
	{"Do", func(t time.Time) string { return ordinal(t.Day()) }},
	{"M", func(t time.Time) string { return strconv.Itoa(int(t.Month())) }},
	{"D", func(t time.Time) string { return strconv.Itoa(t.Day()) }},
}

// Layout is a compiled pattern.
type Layout struct {
	parts []func(time.Time) string
}

// Compile parses pattern into a Layout.
func Compile(pattern string) (Layout, error) {
	if pattern == "" {
		return Layout{}, fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(pattern) > MaxDateFormatLength {
		return Layout{}, fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var l Layout
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			s := lit.String()
			l.parts = append(l.parts, func(time.Time) string { return s })
			lit.Reset()
		}
	}

	for rest := pattern; rest != ""; {
		if rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return Layout{}, fmt.Errorf("%w: unclosed bracket at position %d",
					ErrInvalidDateFormat, len(pattern)-len(rest))
			}
			lit.WriteString(rest[1:end])
			rest = rest[end+1:]
			continue
		}
		if tok, ok := matchToken(rest); ok {
			flush()
			l.parts = append(l.parts, tok.format)
			rest = rest[len(tok.text):]
			continue
		}
		lit.WriteByte(rest[0])
		rest = rest[1:]
	}
	flush()
	return l, nil
}

func matchToken(s string) (token, bool) {
	for _, tok := range tokens {
		if strings.HasPrefix(s, tok.text) {
			return tok, true
		}
	}
	return token{}, false
}

// Format renders t.
func (l Layout) Format(t time.Time) string {
	var b strings.Builder
	for _, p := range l.parts {
		b.WriteString(p(t))
	}
	return b.String()
}

// ordinal returns 1st, 2nd, 3rd, 4th, 11th, 21st...
func ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// ResolveDate expands a configured date value against now:
//
//	"auto"          now as YYYY-MM-DD
//	"auto:PATTERN"  now formatted with PATTERN
//	"auto:PRESET"   now formatted with a DatePresets entry
//	anything else   returned unchanged
//
// The "auto" prefix is case-insensitive; the pattern keeps its case.
func ResolveDate(value string, now time.Time) (string, error) {
	lower := strings.ToLower(value)
	if !strings.HasPrefix(lower, "auto") {
		return value, nil
	}

	pattern := DefaultDateFormat
	switch {
	case lower == "auto":
	case strings.HasPrefix(lower, "auto:"):
		pattern = value[len("auto:"):]
		if pattern == "" {
			return "", fmt.Errorf("%w: format cannot be empty after \"auto:\"", ErrInvalidDateFormat)
		}
		if preset, ok := DatePresets[strings.ToLower(pattern)]; ok {
			pattern = preset
		}
	default:
		return "", fmt.Errorf("%w: invalid auto syntax %q, use \"auto\" or \"auto:FORMAT\"", ErrInvalidDateFormat, value)
	}

	l, err := Compile(pattern)
	if err != nil {
		return "", err
	}
	return l.Format(now), nil
}
