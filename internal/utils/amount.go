package utils

import (
	"fmt"
	"math/big"
	"strings"
)

// ToSmallestUnits converts a user-facing decimal amount string into an
// integer smallest-unit string using the token's decimal exponent. The
// conversion is exact for any decimal string representable within the
// token's precision; fractional digits beyond the exponent are truncated
// silently.
func ToSmallestUnits(amount string, decimals int) (string, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return "", fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(amount, "-") {
		return "", fmt.Errorf("negative amount %q", amount)
	}

	whole, frac := amount, ""
	if idx := strings.IndexByte(amount, '.'); idx >= 0 {
		whole, frac = amount[:idx], amount[idx+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return "", fmt.Errorf("malformed amount %q", amount)
	}

	// Truncate beyond the token's precision, pad the rest with zeros.
	if len(frac) > decimals {
		frac = frac[:decimals]
	}
	frac += strings.Repeat("0", decimals-len(frac))

	units, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return "", fmt.Errorf("malformed amount %q", amount)
	}
	return units.String(), nil
}

// FromSmallestUnits formats an integer smallest-unit string back into a
// human-readable decimal amount, trimming trailing fractional zeros.
func FromSmallestUnits(units string, decimals int) (string, error) {
	units = strings.TrimSpace(units)
	if units == "" || !isDigits(units) {
		return "", fmt.Errorf("malformed unit amount %q", units)
	}
	units = strings.TrimLeft(units, "0")
	if units == "" {
		return "0", nil
	}

	if len(units) <= decimals {
		units = strings.Repeat("0", decimals-len(units)+1) + units
	}
	whole := units[:len(units)-decimals]
	frac := strings.TrimRight(units[len(units)-decimals:], "0")
	if frac == "" {
		return whole, nil
	}
	return whole + "." + frac, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
