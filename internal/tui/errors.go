package tui

import (
	"fmt"

	"github.com/pders01/frontpage/internal/topstories"
)

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// errorText is what the status bar shows for err.
func errorText(err error) string {
	return topstories.Describe(err)
}
