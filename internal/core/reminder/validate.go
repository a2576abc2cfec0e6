package reminder

import (
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"
)

// ValidateMessage checks that a reminder message is non-empty after
// trimming whitespace.
func ValidateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return ErrEmptyMessage
	}
	return nil
}

// MessageField returns a criterio field validator for reminder messages.
func MessageField(field, message string) error {
	return criterio.Run(field, message, ValidateMessage)
}

// ParseUrgency converts a user-supplied string into an Urgency.
func ParseUrgency(s string) (Urgency, error) {
	u := Urgency(strings.ToLower(strings.TrimSpace(s)))
	if !u.IsValid() {
		return "", fmt.Errorf("invalid urgency %q: must be one of now, today, soon, whenever", s)
	}
	return u, nil
}

// ParseListType converts a user-supplied string into a ListType.
func ParseListType(s string) (ListType, error) {
	l := ListType(strings.ToLower(strings.TrimSpace(s)))
	if !l.IsValid() {
		return "", fmt.Errorf("invalid list %q: must be actual or backlog", s)
	}
	return l, nil
}
