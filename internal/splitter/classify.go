package splitter

import "strings"

// Category routes a file to its output and archive prefixes.
type Category string

const (
	CategoryDriverRoutes    Category = "driver_routes"
	CategoryDispatchSummary Category = "dsp_summary"
)

// Classification is the routing decision for one uploaded file.
// An empty TargetSheet means every sheet is exported.
type Classification struct {
	Category    Category
	TargetSheet string
}

// Filename-pattern rules, evaluated in priority order.
type rule struct {
	matches func(lowerName string) bool
	result  Classification
}

var rules = []rule{
	// Routes exports from the DSP Logistics portal
	{
		matches: func(name string) bool {
			return strings.HasPrefix(name, "routes_") && strings.Contains(name, "dsk4")
		},
		result: Classification{Category: CategoryDriverRoutes, TargetSheet: "Routes"},
	},
	// DayOfOpsPlan workbooks (Solution / Dispatch Plan)
	{
		matches: func(name string) bool {
			return strings.Contains(name, "dayofopsplan")
		},
		result: Classification{Category: CategoryDispatchSummary},
	},
}

// Classify matches the filename against the rule table, case-insensitively.
// Unrecognized names fall back to the dispatch-summary category with all
// sheets; the second return value reports whether a rule matched.
func Classify(filename string) (Classification, bool) {
	lower := strings.ToLower(filename)
	for _, r := range rules {
		if r.matches(lower) {
			return r.result, true
		}
	}
	return Classification{Category: CategoryDispatchSummary}, false
}

// SanitizeSheetName replaces every character outside [A-Za-z0-9_-] with an
// underscore so sheet names are safe inside object paths.
func SanitizeSheetName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
