package store

import (
	"fmt"
)

// AuthenticationError is returned when a session cannot be established, either
// because the credentials were rejected or because the site could not be
// reached.
type AuthenticationError struct {
	Site string
	User string
	Err  error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication error for %q on site %s: %v", e.User, e.Site, e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}
