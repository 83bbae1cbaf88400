// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// PostTextLimit is the maximum post length in characters.
const PostTextLimit = 280

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}

	if len(username) > 50 {
		return fmt.Errorf("username must not exceed 50 characters")
	}

	// Only allow alphanumeric and underscores
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, and underscores")
	}

	return nil
}

// ValidatePassword checks password length bounds
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters long")
	}

	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}

	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}

	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	return nil
}

// ValidateDisplayName checks an optional display name
func ValidateDisplayName(name string) error {
	if utf8.RuneCountInString(name) > 100 {
		return fmt.Errorf("display name must not exceed 100 characters")
	}

	return nil
}

// ValidateBio checks profile bio length
func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > PostTextLimit {
		return fmt.Errorf("bio must not exceed %d characters", PostTextLimit)
	}

	return nil
}

// ValidatePostText checks post content length. Length is counted in
// runes, so multibyte text is not penalized.
func ValidatePostText(text string) error {
	if text == "" {
		return fmt.Errorf("post text must not be empty")
	}

	if utf8.RuneCountInString(text) > PostTextLimit {
		return fmt.Errorf("post text must not exceed %d characters", PostTextLimit)
	}

	return nil
}
