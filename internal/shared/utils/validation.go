package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Payload size limits (in bytes)
const (
	MaxJSONSize    = 1 * 1024 * 1024 // 1MB - maximum request body
	MaxMessageSize = 16 * 1024       // 16KB - single WebSocket command
)

// String length limits
const (
	MaxIDLength    = 128
	MaxTitleLength = 256
	MaxURLLength   = 2048
)

// SafeIDPattern allows alphanumeric, dots, hyphens, underscores
var SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil // Optional field, empty is OK
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	// Check for null bytes (security issue)
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateID validates an icon or window ID
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}

	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, dots, hyphens, and underscores allowed)", fieldName)
	}

	return nil
}

// ValidateTitle validates a display title
func ValidateTitle(title string) error {
	return ValidateString(title, "title", 0, MaxTitleLength, false)
}

// ValidateImage validates an icon image URL or path
func ValidateImage(image string) error {
	if err := ValidateString(image, "icon", 0, MaxURLLength, false); err != nil {
		return err
	}
	if strings.ContainsAny(image, " \t\r\n") {
		return fmt.Errorf("icon must not contain whitespace")
	}
	return nil
}
