// Package dateutil parses document dates written with user-friendly format
// tokens such as DD/MM/YYYY.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate indicates a malformed date or date format.
var ErrInvalidDate = errors.New("invalid date")

// MaxFormatLength limits format string length.
const MaxFormatLength = 50

// DefaultFormat is used when no format is given.
const DefaultFormat = "YYYY-MM-DD"

// Auto selects the time the document is written.
const Auto = "auto"

// tokens maps format tokens to Go layout components, longest first.
var tokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Presets are named shortcuts for common formats.
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// Layout converts a format string or preset name to a Go time layout.
// Text inside brackets is kept literally: "[Week of] MMM D".
func Layout(format string) (string, error) {
	if format == "" {
		format = DefaultFormat
	}
	if preset, ok := Presets[strings.ToLower(format)]; ok {
		format = preset
	}
	if len(format) > MaxFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDate, MaxFormatLength)
	}

	var b strings.Builder
	b.Grow(len(format) + 10)

	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.IndexByte(format[i+1:], ']')
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDate, i)
			}
			b.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		matched := false
		for _, t := range tokens {
			if strings.HasPrefix(format[i:], t.token) {
				b.WriteString(t.layout)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String(), nil
}

// Parse reads value written in format. An empty value or "auto" returns the
// zero time, which writers replace with the time of writing.
func Parse(value, format string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, Auto) {
		return time.Time{}, nil
	}
	layout, err := Layout(format)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q does not match %q", ErrInvalidDate, value, format)
	}
	return t, nil
}
