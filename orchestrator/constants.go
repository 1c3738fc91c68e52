package orchestrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/opgaveflyt/opgaveflyt-dispatcher/store"
)

// GetConstant returns the value of a named constant.
func (db *DB) GetConstant(ctx context.Context, name string) (string, error) {
	var value string

	row := db.conn.QueryRowContext(ctx, `SELECT value FROM constants WHERE name = ?`, name)
	if err := row.Scan(&value); errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("constant '%s': %w", name, ErrNotFound)
	} else if err != nil {
		return "", err
	}

	return value, nil
}

func (db *DB) SetConstant(ctx context.Context, name, value string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO constants (name, value, changed_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, changed_at = excluded.changed_at`,
		name, value, db.timestamp())

	return err
}

// GetCredential returns the username and decrypted password of a named
// credential.
func (db *DB) GetCredential(ctx context.Context, name string) (store.Credentials, error) {
	var username string
	var sealed []byte

	row := db.conn.QueryRowContext(ctx, `SELECT username, password FROM credentials WHERE name = ?`, name)
	if err := row.Scan(&username, &sealed); errors.Is(err, sql.ErrNoRows) {
		return store.Credentials{}, fmt.Errorf("credential '%s': %w", name, ErrNotFound)
	} else if err != nil {
		return store.Credentials{}, err
	}

	password, err := db.open(sealed)
	if err != nil {
		return store.Credentials{}, fmt.Errorf("credential '%s': %w", name, err)
	}

	return store.Credentials{
		Username: username,
		Password: password,
	}, nil
}

func (db *DB) SetCredential(ctx context.Context, name string, credentials store.Credentials) error {
	sealed, err := db.seal(credentials.Password)
	if err != nil {
		return err
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO credentials (name, username, password, changed_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET username = excluded.username, password = excluded.password, changed_at = excluded.changed_at`,
		name, credentials.Username, sealed, db.timestamp())

	return err
}

// seal encrypts with a random nonce prepended to the box.
func (db *DB) seal(plaintext string) ([]byte, error) {
	if db.key == nil {
		return nil, fmt.Errorf("no encryption key configured")
	}

	nonce, err := newNonce()
	if err != nil {
		return nil, err
	}

	return secretbox.Seal(nonce[:], []byte(plaintext), nonce, db.key), nil
}

func (db *DB) open(sealed []byte) (string, error) {
	if db.key == nil {
		return "", fmt.Errorf("no encryption key configured")
	}

	if len(sealed) < 24+secretbox.Overhead {
		return "", fmt.Errorf("invalid sealed password")
	}

	var nonce [24]byte
	copy(nonce[:], sealed[:24])

	plaintext, ok := secretbox.Open(nil, sealed[24:], &nonce, db.key)
	if !ok {
		return "", fmt.Errorf("unable to decrypt password - incorrect key?")
	}

	return string(plaintext), nil
}
