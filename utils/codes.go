// backend/utils/codes.go
package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeMinistryCode trims and uppercases a ministry code taken from a URL
// or a command line ("mineduc " becomes "MINEDUC").
func NormalizeMinistryCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ParseYear parses a fiscal year given as text.
func ParseYear(text string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("invalid year %q: %w", text, err)
	}
	return year, nil
}

// YearRange returns the years from..to inclusive, or nil when from > to.
func YearRange(from, to int) []int {
	if from > to {
		return nil
	}
	years := make([]int, 0, to-from+1)
	for y := from; y <= to; y++ {
		years = append(years, y)
	}
	return years
}
