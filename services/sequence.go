package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

// SequenceGenerator yields the next value of a prefixed, zero-padded numeric
// series. Implementations read the current maximum from storage and do not
// reserve the value: two callers may receive the same result, and the unique
// constraint of the table being filled decides who wins.
type SequenceGenerator interface {
	Next(ctx context.Context) (string, error)
}

// formatSequence pads n to digits; wider values are kept whole (TRX-1000).
func formatSequence(prefix string, n, digits int) string {
	return fmt.Sprintf("%s%0*d", prefix, digits, n)
}

// parseSequence extracts the first capture group of pattern from value.
func parseSequence(pattern *regexp.Regexp, value string) (int, bool) {
	match := pattern.FindStringSubmatch(value)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
