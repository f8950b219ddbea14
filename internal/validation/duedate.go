package validation

import (
	"strconv"
	"strings"
	"time"
)

// DueDateLayout is the stored and rendered due date format.
const DueDateLayout = "2006-01-02"

// DatePolicy decides what happens to dates that overflow the calendar,
// such as February 30.
type DatePolicy int

const (
	// Lenient rolls overflowing days and months forward into the following
	// period, so 2023-02-30 becomes 2023-03-02.
	Lenient DatePolicy = iota
	// Strict rejects any date that does not exist as written.
	Strict
)

// ParseDueDate parses a Y-M-D string. Components may omit zero padding.
// Years 0 through 99 are read as 1900 through 1999, so 24-01-01 is
// 1924-01-01. Months above 12 are always rejected; other overflow follows
// policy.
func ParseDueDate(s string, policy DatePolicy) (time.Time, error) {
	invalid := &FieldError{Field: FieldDueDate}

	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return time.Time{}, invalid
	}
	var nums [3]int
	for i, p := range parts {
		n, ok := atoiDigits(p)
		if !ok {
			return time.Time{}, invalid
		}
		nums[i] = n
	}
	year, month, day := nums[0], nums[1], nums[2]
	if month > 12 {
		return time.Time{}, invalid
	}
	if year <= 99 {
		year += 1900
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if policy == Strict && (t.Year() != year || int(t.Month()) != month || t.Day() != day) {
		return time.Time{}, invalid
	}
	if t.Year() > 9999 {
		return time.Time{}, invalid
	}
	return t, nil
}

// NormalizeDueDate parses s and returns it in DueDateLayout.
func NormalizeDueDate(s string, policy DatePolicy) (string, error) {
	t, err := ParseDueDate(s, policy)
	if err != nil {
		return "", err
	}
	return FormatDueDate(t), nil
}

// FormatDueDate renders t in DueDateLayout.
func FormatDueDate(t time.Time) string {
	return t.Format(DueDateLayout)
}

// atoiDigits accepts only non-empty runs of ASCII digits.
func atoiDigits(s string) (int, bool) {
	if s == "" || len(s) > 9 {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
