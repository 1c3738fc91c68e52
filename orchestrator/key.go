package orchestrator

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// ParseKey decodes a 32 byte key from hex or base64. An empty string returns
// a nil key.
func ParseKey(s string) (*[32]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var b []byte
	if v, err := hex.DecodeString(s); err == nil {
		b = v
	} else if v, err := base64.StdEncoding.DecodeString(s); err == nil {
		b = v
	} else if v, err := base64.URLEncoding.DecodeString(s); err == nil {
		b = v
	} else {
		return nil, fmt.Errorf("invalid key - expected 32 bytes, hex or base64 encoded")
	}

	if len(b) != 32 {
		return nil, fmt.Errorf("invalid key length %d - expected 32 bytes", len(b))
	}

	var key [32]byte
	copy(key[:], b)

	return &key, nil
}

func newNonce() (*[24]byte, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}

	return &nonce, nil
}
