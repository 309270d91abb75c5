package splitter

import (
	"regexp"
	"time"
)

// No word-boundary anchoring: portal filenames embed the date between
// underscores and dashes, e.g. "Routes_DSK4_2025-09-13_15_16 (EDT)".
var datePattern = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)

// ExtractYearMonth finds the first YYYY-MM-DD substring in the filename
// stem and returns its (year, month) when it is a real calendar date.
// The caller substitutes the current processing date when ok is false.
func ExtractYearMonth(stem string) (year, month string, ok bool) {
	m := datePattern.FindStringSubmatch(stem)
	if m == nil {
		return "", "", false
	}
	if _, err := time.Parse("2006-01-02", m[0]); err != nil {
		return "", "", false
	}
	return m[1], m[2], true
}
