package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomHex returns n random bytes as a lowercase hex string. Used to tag
// snapshot revisions.
func RandomHex(n int) (string, error) {
	byt := make([]byte, n)
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}
	return hex.EncodeToString(byt), nil
}
