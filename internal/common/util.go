package common

import "strings"

// WipeByteArray overwrites the contents of b with zeros. It is used to drop
// passwords from memory once they have been sent. Nil is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// NormalizeQuery lowercases a product query and collapses whitespace, the
// same way the backend normalizes product names.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
