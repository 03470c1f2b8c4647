package validator

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var durationUnits = map[string]time.Duration{
	"ns": time.Nanosecond,
	"us": time.Microsecond,
	"ms": time.Millisecond,
	"s":  time.Second,
	"m":  time.Minute,
	"h":  time.Hour,
	"d":  24 * time.Hour,
}

// ParseDuration parses the compact <N><unit> grammar used throughout the
// input document ("42ms", "2s", "1m30s"). Unlike time.ParseDuration, it
// additionally accepts the "d" (day) unit, matching the corpus's original
// duration_str-based parsing. No third-party Go library in the retrieved
// pack offers a day-inclusive duration grammar, so this is hand-rolled.
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration string")
	}

	var total time.Duration
	rest := s
	matchedAny := false

	for len(rest) > 0 {
		numEnd := 0
		for numEnd < len(rest) && (rest[numEnd] >= '0' && rest[numEnd] <= '9' || rest[numEnd] == '.') {
			numEnd++
		}
		if numEnd == 0 {
			return 0, fmt.Errorf("invalid duration string %q", s)
		}
		numStr := rest[:numEnd]
		rest = rest[numEnd:]

		unitEnd := 0
		for unitEnd < len(rest) && (rest[unitEnd] < '0' || rest[unitEnd] > '9') {
			unitEnd++
		}
		unitStr := rest[:unitEnd]
		rest = rest[unitEnd:]

		unit, ok := durationUnits[strings.TrimSpace(unitStr)]
		if !ok {
			return 0, fmt.Errorf("invalid duration unit %q in %q", unitStr, s)
		}

		n, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration quantity %q in %q", numStr, s)
		}

		total += time.Duration(n * float64(unit))
		matchedAny = true
	}

	if !matchedAny {
		return 0, fmt.Errorf("invalid duration string %q", s)
	}
	return total, nil
}

// HumanFormat renders a duration the same compact way duration_str's
// HumanFormat does for the original's stdout-pattern timeout message
// ("stdout did not output ... in 10ms").
func HumanFormat(d time.Duration) string {
	if d == 0 {
		return "0ms"
	}
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%dus", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%gs", d.Seconds())
	default:
		return d.String()
	}
}
