package validation

import (
	"fmt"
	"regexp"
)

// NamePattern defines the allowed format for action kinds and event topics:
// lowercase segments of letters, digits, `_` and `-`, optionally joined by a
// single colon (e.g. "message", "job:update"). Length 1-64.
var NamePattern = regexp.MustCompile(`^[a-z0-9_-]+(:[a-z0-9_-]+)?$`)

// MaxNameLen is the maximum length of a kind or topic
const MaxNameLen = 64

// ValidateKind checks that an outbox action kind is well formed
func ValidateKind(kind string) error {
	return validateName("kind", kind)
}

// ValidateTopic checks that a realtime topic is well formed
func ValidateTopic(topic string) error {
	return validateName("topic", topic)
}

func validateName(what, name string) error {
	if name == "" {
		return fmt.Errorf("%s cannot be empty", what)
	}

	if len(name) > MaxNameLen {
		return fmt.Errorf("%s must not exceed %d characters", what, MaxNameLen)
	}

	if !NamePattern.MatchString(name) {
		return fmt.Errorf("%s can only contain lowercase letters, numbers, underscores and dashes, with an optional single colon separator", what)
	}

	return nil
}
