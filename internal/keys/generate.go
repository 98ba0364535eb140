package keys

import (
	"fmt"
	"io"
	"strings"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultKeyLength is the number of characters in a generated key.
const DefaultKeyLength = 32

// largest multiple of len(alphabet) that fits in a byte
const rejectAbove = 256 - 256%len(alphabet)

// generateKey draws a key of the given length from r using rejection
// sampling so every character is equally likely.
func generateKey(r io.Reader, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("key length must be positive, got %d", length)
	}
	var sb strings.Builder
	sb.Grow(length)
	buf := make([]byte, length)
	for sb.Len() < length {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= rejectAbove {
				continue
			}
			sb.WriteByte(alphabet[int(b)%len(alphabet)])
			if sb.Len() == length {
				break
			}
		}
	}
	return sb.String(), nil
}

// Normalize trims and upper-cases a presented key.
func Normalize(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// wellFormed reports whether key has the generated shape. A non-positive
// length checks the alphabet only.
func wellFormed(key string, length int) bool {
	if key == "" || (length > 0 && len(key) != length) {
		return false
	}
	for i := 0; i < len(key); i++ {
		if !strings.ContainsRune(alphabet, rune(key[i])) {
			return false
		}
	}
	return true
}
