package utils

import "strings"

// IsValidSuiAddress reports whether address is a 0x-prefixed 32-byte hex
// Sui address.
func IsValidSuiAddress(address string) bool {
	if !strings.HasPrefix(address, "0x") {
		return false
	}
	hex := address[2:]
	if len(hex) != 64 {
		return false
	}
	for _, r := range hex {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// ShortenObjectID truncates an object id for display in chat messages.
func ShortenObjectID(id string, n int) string {
	if len(id) <= n {
		return id
	}
	return id[:n] + "..."
}
