package validation

import (
	"fmt"
	"regexp"
)

// Section names end up in a request path, so they are restricted to
// lowercase words joined by hyphens.
var sectionPattern = regexp.MustCompile(`^[a-z][a-z-]*$`)

const maxSectionLength = 64

// ValidateSection rejects section names that could not be a path segment
// of the top stories endpoint.
func ValidateSection(name string) error {
	if name == "" {
		return fmt.Errorf("section cannot be empty")
	}
	if len(name) > maxSectionLength {
		return fmt.Errorf("section too long (max %d characters)", maxSectionLength)
	}
	if !sectionPattern.MatchString(name) {
		return fmt.Errorf("invalid section name %q", name)
	}
	return nil
}
