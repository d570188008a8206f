package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	apiKeyScheme    = "si"
	apiKeyRandBytes = 24
	// PrefixLen is how many leading characters of a key are stored in
	// clear for lookup. The rest is only kept as a bcrypt hash.
	PrefixLen = 11
)

// GenerateAPIKey mints a new key of the form "si_<48 hex chars>" and
// returns the plain key together with its lookup prefix.
func GenerateAPIKey() (key, prefix string, err error) {
	buf := make([]byte, apiKeyRandBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate api key: %w", err)
	}
	key = apiKeyScheme + "_" + hex.EncodeToString(buf)
	return key, key[:PrefixLen], nil
}

// KeyPrefix extracts the lookup prefix from a presented key. Returns false
// for strings that cannot be one of our keys.
func KeyPrefix(key string) (string, bool) {
	if len(key) < PrefixLen || !strings.HasPrefix(key, apiKeyScheme+"_") {
		return "", false
	}
	return key[:PrefixLen], true
}
