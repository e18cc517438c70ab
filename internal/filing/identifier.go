// Package filing identifies and classifies SEC filing references.
package filing

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// idLength is the number of hex characters kept from the digest.
const idLength = 12

// ID returns the stable identifier of a filing reference. It depends only on
// the trimmed reference, so repeated extractions of the same filing always
// resolve to the same Firestore document.
func ID(reference string) string {
	sum := md5.Sum([]byte(strings.TrimSpace(reference)))
	return hex.EncodeToString(sum[:])[:idLength]
}
