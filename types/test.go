package types

import "strings"

// TestStatus represents the possible states of a test execution
type TestStatus string

const (
	TestStatusPass  TestStatus = "pass"
	TestStatusFail  TestStatus = "fail"
	TestStatusSkip  TestStatus = "skip"
	TestStatusError TestStatus = "error"
)

// GetTestDisplayName returns a formatted display name for a test method.
// If the method name is empty, the last element of the class path is used instead.
func GetTestDisplayName(methodName string, className string) string {
	if methodName != "" {
		return methodName
	}
	parts := strings.Split(strings.TrimSuffix(className, "/"), "/")
	if len(parts) > 0 && parts[len(parts)-1] != "" {
		return parts[len(parts)-1] + " (class)"
	}
	return className
}
