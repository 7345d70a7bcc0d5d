package engine

import (
	"fmt"
	"strings"
)

// FailureKind is a coarse classification of a terminal fetch failure.
type FailureKind string

const (
	FailBlocked         FailureKind = "blocked"
	FailRestricted      FailureKind = "restricted"
	FailNotFound        FailureKind = "not_found"
	FailArtifactMissing FailureKind = "artifact_missing"
	FailInternal        FailureKind = "internal"
)

// Error pairs a failure kind with a short user-safe message. The underlying
// cause is kept for internal logging and never shown to clients.
type Error struct {
	Kind    FailureKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Classify maps a raw engine error to a classified Error with a message
// safe to surface. Unrecognized errors become a generic internal failure.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	if classified, ok := err.(*Error); ok {
		return classified
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "403") || strings.Contains(msg, "forbidden") || strings.Contains(msg, "too many requests") || strings.Contains(msg, "429"):
		return &Error{Kind: FailBlocked, Message: "YouTube blocked this request. Try again or select a different quality.", cause: err}
	case strings.Contains(msg, "private") || strings.Contains(msg, "login") || strings.Contains(msg, "age") || strings.Contains(msg, "cipher") || strings.Contains(msg, "signature") || strings.Contains(msg, "embed"):
		return &Error{Kind: FailRestricted, Message: "This video is private or restricted.", cause: err}
	case strings.Contains(msg, "not found") || strings.Contains(msg, "unavailable") || strings.Contains(msg, "invalid characters") || strings.Contains(msg, "video id"):
		return &Error{Kind: FailNotFound, Message: "Video not found or unavailable.", cause: err}
	default:
		return &Error{Kind: FailInternal, Message: "Download failed. Try a different quality.", cause: err}
	}
}

// PublicMessage returns the user-safe message for any error.
func PublicMessage(err error) string {
	return Classify(err).Message
}
