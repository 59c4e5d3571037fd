package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/notification-center/internal/model"
)

// AuthError indicates that the API rejected the configured credentials.
// It is wrapped inside a FetchError or ActionError when a 401 is received.
type AuthError struct {
	BaseURL string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.BaseURL, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// FetchError reports a failed read against the notifications API:
// a transport failure or a non-success HTTP status.
type FetchError struct {
	// Op names the read, e.g. "recent" or "stats".
	Op string

	// Status is the HTTP status code, or 0 for transport failures.
	Status int

	Cause error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s failed (%d): %v", e.Op, e.Status, e.Cause)
	}
	return fmt.Sprintf("fetch %s failed: %v", e.Op, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// IsFetchError reports whether err (or any error in its chain) is a FetchError.
func IsFetchError(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}

// ActionError reports a failed write: mark-read, mark-all-read or
// create-test.
type ActionError struct {
	Action string
	Status int
	Cause  error
}

func (e *ActionError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s failed (%d): %v", e.Action, e.Status, e.Cause)
	}
	return fmt.Sprintf("%s failed: %v", e.Action, e.Cause)
}

func (e *ActionError) Unwrap() error { return e.Cause }

// IsActionError reports whether err (or any error in its chain) is an ActionError.
func IsActionError(err error) bool {
	var actionErr *ActionError
	return errors.As(err, &actionErr)
}

// Fetcher is the read side of the notifications API used by the poller.
type Fetcher interface {
	// FetchSnapshot returns the most recent notifications, at most limit.
	FetchSnapshot(ctx context.Context, limit int) ([]model.Notification, error)

	// FetchStats returns the server-side aggregate counters.
	FetchStats(ctx context.Context) (model.Stats, error)
}

// Source is the full contract of the notifications API.
type Source interface {
	Fetcher

	// ValidateConnection verifies credentials and connectivity.
	// Returns a human-readable status message on success.
	ValidateConnection(ctx context.Context) (string, error)

	// MarkRead marks one notification as read server-side.
	MarkRead(ctx context.Context, id string) error

	// MarkAllRead marks every notification as read server-side.
	MarkAllRead(ctx context.Context) error

	// CreateTest asks the server to create a debug notification.
	CreateTest(ctx context.Context, n model.TestNotification) (*model.Notification, error)
}
