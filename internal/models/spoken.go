package models

import (
	"fmt"
	"strconv"
	"time"
)

// pluralize renders a count with its unit word, e.g. "1 minute", "3 minutes".
func pluralize(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// SpokenDuration renders a duration the way a voice coach reads it aloud:
// "45 seconds", "8 minutes 45 seconds", "1 hour 2 minutes". Seconds are
// dropped once hours are involved. Negative inputs are spoken by magnitude.
func SpokenDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	d = d.Round(time.Second)

	hours := int(d / time.Hour)
	minutes := int(d/time.Minute) % 60
	seconds := int(d/time.Second) % 60

	switch {
	case hours > 0:
		if minutes == 0 {
			return pluralize(hours, "hour")
		}
		return pluralize(hours, "hour") + " " + pluralize(minutes, "minute")
	case minutes > 0:
		if seconds == 0 {
			return pluralize(minutes, "minute")
		}
		return pluralize(minutes, "minute") + " " + pluralize(seconds, "second")
	default:
		return pluralize(seconds, "second")
	}
}

// SpokenPace renders a per-unit pace, e.g. "9 minutes 10 seconds per mile".
func SpokenPace(pace time.Duration, unit DistanceUnit) string {
	return SpokenDuration(pace) + " per " + unit.Singular()
}

// SpokenDistance renders a distance in the configured unit to one decimal,
// e.g. "3.2 miles". Exactly one unit is spoken in the singular.
func SpokenDistance(meters float64, unit DistanceUnit) string {
	value := meters / unit.Meters()
	formatted := strconv.FormatFloat(value, 'f', 1, 64)
	if formatted == "1.0" {
		return "1 " + unit.Singular()
	}
	return formatted + " " + unit.Plural()
}
