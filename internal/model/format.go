package model

import (
	"regexp"
	"strings"
	"time"
)

// matchesFormat validates a field value against its configured Format.
// Three forms are supported, matching spec.md §3's "date strftime, regex,
// or literal":
//   - "" (no format): always matches.
//   - "regex:<pattern>": value must fully match the Go regexp.
//   - "date:<strftime>": value must parse as a date/time using the given
//     strftime-style pattern (a small subset is translated to Go's
//     reference-time layout).
//   - anything else: treated as a literal the value must equal exactly.
func matchesFormat(value, format string) bool {
	if format == "" {
		return true
	}
	switch {
	case strings.HasPrefix(format, "regex:"):
		pattern := strings.TrimPrefix(format, "regex:")
		re, err := regexp.Compile("^(?:" + pattern + ")$")
		if err != nil {
			return false
		}
		return re.MatchString(value)
	case strings.HasPrefix(format, "date:"):
		layout := strftimeToGoLayout(strings.TrimPrefix(format, "date:"))
		_, err := time.Parse(layout, value)
		return err == nil
	default:
		return value == format
	}
}

var strftimeDirectives = map[string]string{
	"%Y": "2006",
	"%y": "06",
	"%m": "01",
	"%d": "02",
	"%H": "15",
	"%M": "04",
	"%S": "05",
}

// strftimeToGoLayout translates the small set of strftime directives used
// in this module's index-field format strings into a Go reference-time
// layout.
func strftimeToGoLayout(pattern string) string {
	layout := pattern
	for directive, goLayout := range strftimeDirectives {
		layout = strings.ReplaceAll(layout, directive, goLayout)
	}
	return layout
}
