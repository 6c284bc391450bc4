// Package util provides utility functions for the VoiceCoach application.
package util

import (
	"math/rand/v2"
	"strings"
)

// GenerateRandomID generates a random ID with the specified prefix and hex length.
// The returned ID will be in the format: "{prefix}{hex_string}".
// Uses math/rand/v2 for optimal performance with modern best practices.
func GenerateRandomID(prefix string, hexLength int) string {
	return prefix + GenerateRandomHex(hexLength)
}

// GenerateRandomHex generates a random hexadecimal string of the specified length.
// Uses math/rand/v2 with optimal entropy utilization for non-cryptographic purposes.
func GenerateRandomHex(length int) string {
	if length <= 0 {
		return ""
	}

	const hexChars = "0123456789abcdef"
	var builder strings.Builder
	builder.Grow(length) // Pre-allocate capacity for efficiency

	for i := 0; i < length; i++ {
		builder.WriteByte(hexChars[rand.IntN(16)])
	}

	return builder.String()
}

// GeneratePromptID generates a unique prompt ID with "pr_" prefix.
func GeneratePromptID() string {
	return GenerateRandomID("pr_", 32)
}

// GenerateSessionID generates a unique run session ID with "run_" prefix.
func GenerateSessionID() string {
	return GenerateRandomID("run_", 32)
}

// GenerateEventID generates a unique session event ID with "ev_" prefix.
func GenerateEventID() string {
	return GenerateRandomID("ev_", 32)
}
