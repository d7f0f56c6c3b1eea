// Package booking validates the per-month quantities a user types into the
// availability-planning grid. Validation runs on every keystroke against
// the month's current availability ceiling, so it is synchronous and cheap.
package booking

import (
	"fmt"
	"strconv"
	"strings"
)

// Increment is the booking granularity: every quantity must be a
// non-negative multiple of this.
const Increment = 25_000

// Result is the outcome of validating one raw input value.
//
// Quantity is nil for empty input (the user is not booking that month);
// it is only set when Valid is true.
type Result struct {
	Valid    bool   `json:"valid"`
	Error    string `json:"error,omitempty"`
	Quantity *int   `json:"quantity"`
}

// Validate checks one raw text value against the month's availability
// ceiling. Thousand-separator commas are tolerated. Months with a zero
// ceiling are disabled upstream; Validate is not called for them.
func Validate(rawText string, ceiling int) Result {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return Result{Valid: true}
	}

	n, err := strconv.Atoi(strings.ReplaceAll(text, ",", ""))
	if err != nil {
		return Result{Error: "Must be a number"}
	}
	if n < 0 {
		return Result{Error: "Cannot be negative"}
	}
	// The ceiling check outranks the increment check: an over-ceiling
	// value reports the ceiling error even when it is also off-increment.
	if n > ceiling {
		return Result{Error: fmt.Sprintf("Cannot exceed availability of %s", FormatQuantity(ceiling))}
	}
	if n%Increment != 0 {
		return Result{Error: fmt.Sprintf("Must be in increments of %s", FormatQuantity(Increment))}
	}
	return Result{Valid: true, Quantity: &n}
}

// FormatQuantity renders a quantity with thousand separators, matching the
// way the grid redisplays accepted values.
func FormatQuantity(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
