// Package secrets looks up the named credentials and constants a run needs
// before it can connect to the document store.
package secrets

import (
	"context"
	"errors"

	"github.com/opgaveflyt/opgaveflyt-dispatcher/store"
)

var ErrNotFound = errors.New("secret not found")

// Vault is the credential and constant lookup used at start-up.
type Vault interface {
	GetCredential(ctx context.Context, name string) (store.Credentials, error)
	GetConstant(ctx context.Context, name string) (string, error)
}
