package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/suipilot/suipilot/internal/models"
)

func TestBuildDryRunSummary(t *testing.T) {
	t.Run("low risk for small transfer", func(t *testing.T) {
		summary := BuildDryRunSummary(DryRunArgs{
			Action:        models.TransactionActionTransferToken,
			Recipient:     "0xabc",
			Amount:        "100000000000", // 100 SUI
			Token:         models.TokenTypeSUI,
			SenderBalance: "1000000000000", // 1000 SUI
			EstimatedGas:  1_000_000,
		})

		assert.Equal(t, models.RiskLevelLow, summary.RiskLevel)
		assert.Equal(t, "transfer 100 SUI to 0xabc", summary.ActionDescription)
		assert.InDelta(t, 0.001, summary.EstimatedGasFee, 1e-9)
	})

	t.Run("medium risk above half the balance", func(t *testing.T) {
		summary := BuildDryRunSummary(DryRunArgs{
			Action:        models.TransactionActionTransferToken,
			Recipient:     "0xabc",
			Amount:        "600000000000",
			Token:         models.TokenTypeSUI,
			SenderBalance: "1000000000000",
			EstimatedGas:  1_000_000,
		})
		assert.Equal(t, models.RiskLevelMedium, summary.RiskLevel)
	})

	t.Run("high risk when amount plus gas exceeds balance", func(t *testing.T) {
		summary := BuildDryRunSummary(DryRunArgs{
			Action:        models.TransactionActionTransferToken,
			Recipient:     "0xabc",
			Amount:        "1000000000000",
			Token:         models.TokenTypeSUI,
			SenderBalance: "1000000000000",
			EstimatedGas:  1_000_000,
		})
		assert.Equal(t, models.RiskLevelHigh, summary.RiskLevel)
	})

	t.Run("gas does not count against non-native balances", func(t *testing.T) {
		summary := BuildDryRunSummary(DryRunArgs{
			Action:        models.TransactionActionTransferToken,
			Recipient:     "0xabc",
			Amount:        "1000000",
			Token:         models.TokenTypeUSDC,
			SenderBalance: "1000000",
			EstimatedGas:  1_000_000,
		})
		// Amount equals the full USDC balance but gas is paid in SUI.
		assert.Equal(t, models.RiskLevelMedium, summary.RiskLevel)
	})

	t.Run("stake and unstake descriptions", func(t *testing.T) {
		stake := BuildDryRunSummary(DryRunArgs{
			Action:        models.TransactionActionStakeToken,
			Recipient:     "Staking Pool",
			Amount:        "5000000000",
			Token:         models.TokenTypeSUI,
			SenderBalance: "100000000000",
			EstimatedGas:  1_000_000,
		})
		assert.Equal(t, "stake 5 SUI with the staking pool", stake.ActionDescription)

		unstake := BuildDryRunSummary(DryRunArgs{
			Action:        models.TransactionActionUnstakeToken,
			Recipient:     "0xme",
			Amount:        "5000000000",
			Token:         models.TokenTypeSUI,
			SenderBalance: "100000000000",
			EstimatedGas:  1_000_000,
		})
		assert.Equal(t, "unstake 5 SUI from the staking pool", unstake.ActionDescription)
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		args := DryRunArgs{
			Action:        models.TransactionActionTransferToken,
			Recipient:     "0xabc",
			Amount:        "100000000000",
			Token:         models.TokenTypeSUI,
			SenderBalance: "1000000000000",
			EstimatedGas:  1_000_000,
		}
		assert.Equal(t, BuildDryRunSummary(args), BuildDryRunSummary(args))
	})
}
