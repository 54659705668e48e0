package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var clockRe = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// Clock parses a wall-clock "HH:MM" string into minutes since midnight.
func Clock(s string) (int, error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid clock time %q, expected HH:MM", s)
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	return h*60 + min, nil
}

// ClockRange parses a start/end pair and enforces start < end within a
// single calendar day. It returns both values in minutes since midnight.
func ClockRange(start, end string) (int, int, error) {
	s, err := Clock(start)
	if err != nil {
		return 0, 0, err
	}
	e, err := Clock(end)
	if err != nil {
		return 0, 0, err
	}
	if s >= e {
		return 0, 0, fmt.Errorf("invalid time range %s-%s: start must be before end", start, end)
	}
	return s, e, nil
}

// FormatClock renders minutes since midnight back into "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
