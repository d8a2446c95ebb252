package judge

import "strings"

// Normalize trims leading and trailing whitespace (including trailing
// newlines). Internal whitespace and line content are left verbatim.
func Normalize(s string) string {
	return strings.TrimSpace(s)
}

// Passed reports whether a trial passed: the normalized actual output must
// equal the normalized expected output byte-for-byte, and the exit status
// must be present and zero. A matching output with a nonzero exit is a fail.
func Passed(actual, expected string, exitCode *int) bool {
	if exitCode == nil || *exitCode != 0 {
		return false
	}
	return Normalize(actual) == Normalize(expected)
}
