package httpx

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD value.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("httpx: invalid date %q: %w", value, ErrValidation)
	}
	return t, nil
}
