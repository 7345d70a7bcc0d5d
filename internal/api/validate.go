package api

import (
	"errors"
	"regexp"
)

// Recognized YouTube link shapes. Anything else is rejected before the
// extraction engine is ever invoked.
var youtubeURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(https?://)?(www\.)?youtube\.com/watch\?v=[\w-]+`),
	regexp.MustCompile(`(?i)^(https?://)?(www\.)?youtube\.com/shorts/[\w-]+`),
	regexp.MustCompile(`(?i)^(https?://)?(www\.)?youtu\.be/[\w-]+`),
	regexp.MustCompile(`(?i)^(https?://)?(m\.)?youtube\.com/watch\?v=[\w-]+`),
}

var (
	errURLRequired = errors.New("URL is required")
	errURLInvalid  = errors.New("Please enter a valid YouTube URL")
)

// ValidateURL checks that raw looks like a supported video link.
func ValidateURL(raw string) error {
	if raw == "" {
		return errURLRequired
	}
	for _, pattern := range youtubeURLPatterns {
		if pattern.MatchString(raw) {
			return nil
		}
	}
	return errURLInvalid
}
