package lifecycle

import (
	"errors"
	"strings"
)

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

var ErrInvalidPriority = errors.New("invalid_priority")

// ParsePriority accepts any casing. Empty input yields def.
func ParsePriority(value string, def Priority) (Priority, error) {
	switch p := Priority(strings.ToUpper(strings.TrimSpace(value))); p {
	case "":
		if def == "" {
			return "", ErrInvalidPriority
		}
		return def, nil
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return p, nil
	default:
		return "", ErrInvalidPriority
	}
}
