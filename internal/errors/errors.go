package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors. Every one of them ends the current
// command invocation; none is retried.
const (
	ErrNotAuthenticated = "NOT_AUTHENTICATED"
	ErrConnection       = "CONNECTION"
	ErrRequestFailed    = "REQUEST_FAILED"
	ErrSessionExpired   = "SESSION_EXPIRED"
	ErrSiteNotFound     = "SITE_NOT_FOUND"
	ErrEnvNotFound      = "ENV_NOT_FOUND"
	ErrMissingSite      = "MISSING_SITE"
	ErrMissingEnv       = "MISSING_ENV"
	ErrUnknownAction    = "UNKNOWN_ACTION"
	ErrExecFailed       = "EXEC_FAILED"
	ErrConfig           = "CONFIG"
	ErrCache            = "CACHE"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered for humans as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrRequestFailed.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrRequestFailed,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error, or any error it wraps, is a structured Error
// with the given code.
func IsCode(err error, code string) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// Code returns the code of the outermost structured Error in err's chain,
// or the empty string when there is none.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsSessionOrConnection reports errors about the session or the network
// rather than the command. Callers pass them on unwrapped.
func IsSessionOrConnection(err error) bool {
	return IsCode(err, ErrConnection) ||
		IsCode(err, ErrNotAuthenticated) ||
		IsCode(err, ErrSessionExpired)
}

// Constructors for the taxonomy. They keep wording consistent between the
// layers that raise the same failure.

// NotAuthenticated reports that no session is available.
func NotAuthenticated() *Error {
	return New(ErrNotAuthenticated,
		"You must login first.",
		"Run 'terminus auth login' to create a session")
}

// MissingSite reports an absent --site argument.
func MissingSite() *Error {
	return New(ErrMissingSite,
		"Please specify the site with --site=<sitename> option.",
		"Run 'terminus sites show' for a list of sites")
}

// MissingEnv reports an absent --env argument.
func MissingEnv() *Error {
	return New(ErrMissingEnv,
		"Please specify the site => environment with --env=<environment> option.",
		"")
}

// SiteNotFound reports a site name that is absent even after a refetch.
func SiteNotFound(name string) *Error {
	return New(ErrSiteNotFound,
		fmt.Sprintf("The site named '%s' does not exist.", name),
		"Run `terminus sites show` for a list of sites.")
}

// EnvNotFound reports an environment missing from a site's bindings.
func EnvNotFound(env string) *Error {
	return New(ErrEnvNotFound,
		fmt.Sprintf("The requested environment '%s' either does not exist or you don't have access to it.", env),
		"")
}

// UnknownAction reports an action with no registered handler.
func UnknownAction(group, action string, known []string) *Error {
	suggestion := ""
	if len(known) > 0 {
		suggestion = fmt.Sprintf("Available actions for '%s': %s", group, strings.Join(known, ", "))
	}
	return New(ErrUnknownAction,
		fmt.Sprintf("I cannot find the requested task '%s' to perform it.", action),
		suggestion)
}

// ExecFailed reports a handler that produced nothing to show.
func ExecFailed(cause error) *Error {
	return WrapWithCode(cause, ErrExecFailed,
		"There was an error attempting to execute the requested task.",
		"Re-run with --debug to inspect the request state")
}
