// Package textfit decides whether a string fits a fixed-width form field
// and, when it does not, breaks it greedily into at most two lines.
package textfit

import "strings"

// Measurer reports the advance width of s, in points, at the given font size.
type Measurer interface {
	Width(s string, size float64) float64
}

// MeasurerFunc adapts a plain function to Measurer.
type MeasurerFunc func(s string, size float64) float64

// Width calls f(s, size).
func (f MeasurerFunc) Width(s string, size float64) float64 {
	return f(s, size)
}

// Lines is the outcome of Fit. Line2 is only meaningful when Split is true.
type Lines struct {
	Line1 string
	Line2 string
	Split bool
}

// String joins the lines with a newline, the separator multiline form
// fields expect.
func (l Lines) String() string {
	if !l.Split {
		return l.Line1
	}
	return l.Line1 + "\n" + l.Line2
}

// Fit places text into at most two lines of maxWidth points.
//
// Text that already fits is returned unchanged. Otherwise the words are
// packed greedily onto the first line and everything left over goes to the
// second, which may itself overflow. A first word wider than maxWidth sits
// alone on the first line; characters are never dropped.
func Fit(text string, m Measurer, size, maxWidth float64) Lines {
	if strings.TrimSpace(text) == "" {
		return Lines{}
	}
	if m.Width(text, size) <= maxWidth {
		return Lines{Line1: text}
	}

	words := strings.Fields(text)
	n := 1
	for n < len(words) {
		candidate := strings.Join(words[:n+1], " ")
		if m.Width(candidate, size) > maxWidth {
			break
		}
		n++
	}

	line1 := strings.Join(words[:n], " ")
	if n == len(words) {
		// Only whitespace differed from the original; collapsing it made it fit.
		return Lines{Line1: line1}
	}
	return Lines{
		Line1: line1,
		Line2: strings.Join(words[n:], " "),
		Split: true,
	}
}

// Overflows reports whether text is wider than maxWidth at size.
func Overflows(text string, m Measurer, size, maxWidth float64) bool {
	return m.Width(text, size) > maxWidth
}
