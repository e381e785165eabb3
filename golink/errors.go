package golink

import (
	"errors"
	"fmt"
)

// ErrInvalidInput signals that the incoming request could not be parsed into
// a shortlink: malformed URLs, empty or whitespace-only input, and inputs
// whose first path segment normalizes to the empty string. Maps to HTTP 400.
var ErrInvalidInput = errors.New("golink: invalid input")

// NotFoundError is returned when the lookup reports no stored long value for
// the normalized shortlink. Maps to HTTP 404.
type NotFoundError struct {
	Shortlink string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("golink: shortlink %q not found", e.Shortlink)
}

// TemplateError is returned when the stored long value carries malformed
// template syntax. This is a data-integrity problem with the stored link, not
// the requester's fault; the message is meant for operator logs. Maps to
// HTTP 500.
type TemplateError struct {
	Message string
}

func (e TemplateError) Error() string {
	return "golink: template error: " + e.Message
}
