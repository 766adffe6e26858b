package auth

import (
	"context"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/session"
)

// Failure kinds surfaced to callers. Non-network failures are terminal for
// the attempted operation; there is no automatic retry.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindWrongCredential
	KindInvalidEmail
	KindWeakCredential
	KindAlreadyExists
	KindRateLimited
	KindNetworkFailure
)

// Failure is a provider error translated to a user-facing message.
type Failure struct {
	Kind    Kind
	Message string
}

func (f *Failure) Error() string {
	return f.Message
}

var failures = map[string]Failure{
	session.CodeUserNotFound:    {KindNotFound, "No account found with this email"},
	session.CodeWrongPassword:   {KindWrongCredential, "Incorrect password"},
	session.CodeInvalidEmail:    {KindInvalidEmail, "Invalid email address"},
	session.CodeWeakPassword:    {KindWeakCredential, "Password should be at least 6 characters"},
	session.CodeEmailInUse:      {KindAlreadyExists, "An account with this email already exists"},
	session.CodeTooManyRequests: {KindRateLimited, "Too many failed attempts. Please try again later"},
	session.CodeNetworkFailed:   {KindNetworkFailure, "Network error. Please check your connection and try again"},
}

var unknownFailure = Failure{KindUnknown, "An unexpected error occurred. Please try again"}

// Translate maps a provider-level error to the taxonomy. Timeouts and
// cancellations count as network failures.
func Translate(err error) *Failure {
	cause := errors.Cause(err)
	if cause == context.DeadlineExceeded || cause == context.Canceled {
		f := failures[session.CodeNetworkFailed]
		return &f
	}
	if f, ok := failures[session.ErrorCode(err)]; ok {
		return &f
	}
	f := unknownFailure
	return &f
}
