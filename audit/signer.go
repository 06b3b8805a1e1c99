// audit/signer.go
package audit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// genesisMarker stands in for the previous signature of a chain's first entry.
const genesisMarker = "GENESIS"

// ContentHash returns the lowercase hex SHA-256 of the canonical bytes.
func ContentHash(canonical []byte) string {
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// ChainSignature computes the HMAC-SHA256 chain link over
// dataHash + ":" + (previousSignature or "GENESIS"), keyed by secret.
func ChainSignature(secret []byte, dataHash string, previousSignature *string) string {
	prev := genesisMarker
	if previousSignature != nil {
		prev = *previousSignature
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(dataHash + ":" + prev))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyChainSignature recomputes the signature and compares in constant time.
func VerifyChainSignature(secret []byte, dataHash string, previousSignature *string, signature string) bool {
	expected := ChainSignature(secret, dataHash, previousSignature)
	return hmac.Equal([]byte(expected), []byte(signature))
}
