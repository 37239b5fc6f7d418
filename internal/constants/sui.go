package constants

// Coin type tags used when querying balances and building transactions.
const (
	SuiCoinType  = "0x2::sui::SUI"
	UsdcCoinType = "0xdba34672e30cb065b1f93e3ab55318768fd6fef66c15942c9f7cb846e2f900e7::usdc::USDC"
)

// MistPerSui is the number of MIST in one SUI (9 decimals).
const MistPerSui = 1_000_000_000

// DefaultGasBudget is the gas budget attached to built transactions, in MIST.
const DefaultGasBudget = 10_000_000

// GasUnitEstimate is the fixed computation-unit count used for the gas-fee
// preview. The preview multiplies it by the live reference gas price.
const GasUnitEstimate = 1_000
