package testutil

import "strings"

// Contains checks if the target string contains the given substring
func Contains(target, substr string) bool {
	return strings.Contains(target, substr)
}

// ContainsAny checks if any of the given strings are contained in the target string
func ContainsAny(target string, items ...string) bool {
	for _, item := range items {
		if strings.Contains(target, item) {
			return true
		}
	}
	return false
}
