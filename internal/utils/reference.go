package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// randomHexToken returns lengthInBytes of cryptographically secure randomness,
// hex encoded (so twice as many characters as bytes).
func randomHexToken(lengthInBytes int) (string, error) {
	b := make([]byte, lengthInBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateTransactionReference builds a reference token for ledger entries created
// without one. The token is prefixed so operators can tell generated references
// from bank-supplied ones.
func GenerateTransactionReference() string {
	random, err := randomHexToken(6)
	if err != nil {
		// crypto/rand failing is effectively unrecoverable; fall back to a timestamp token
		return fmt.Sprintf("TXN-%d", time.Now().UTC().UnixNano())
	}
	return "TXN-" + random
}

// GenerateReconciliationReference builds the reference for a compensating
// transaction so it can be traced back to the account it adjusts.
func GenerateReconciliationReference(accountID string) string {
	return fmt.Sprintf("RECON-%s-%d", accountID, time.Now().UTC().Unix())
}
