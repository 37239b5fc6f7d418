package models

import "github.com/suipilot/suipilot/internal/constants"

type TokenType string

const (
	TokenTypeSUI  TokenType = "SUI"
	TokenTypeUSDC TokenType = "USDC"
)

// ParseTokenType maps a classifier-provided token symbol to a TokenType,
// defaulting to SUI for empty or unrecognized values.
func ParseTokenType(symbol string) TokenType {
	switch symbol {
	case string(TokenTypeUSDC):
		return TokenTypeUSDC
	default:
		return TokenTypeSUI
	}
}

// Decimals returns the fixed decimal exponent used to convert user-facing
// amounts into smallest units (MIST for SUI).
func (t TokenType) Decimals() int {
	switch t {
	case TokenTypeUSDC:
		return 6
	default:
		return 9
	}
}

// CoinType returns the Move coin type tag for RPC queries.
func (t TokenType) CoinType() string {
	switch t {
	case TokenTypeUSDC:
		return constants.UsdcCoinType
	default:
		return constants.SuiCoinType
	}
}
