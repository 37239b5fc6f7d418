package services

import (
	"fmt"
	"math/big"

	"github.com/suipilot/suipilot/internal/constants"
	"github.com/suipilot/suipilot/internal/models"
	"github.com/suipilot/suipilot/internal/utils"
)

// DryRunArgs are the inputs to the dry-run preview. Amounts and balances are
// in the token's smallest units; gas is in MIST.
type DryRunArgs struct {
	Action        models.TransactionAction
	Recipient     string
	Amount        string
	Token         models.TokenType
	SenderBalance string
	EstimatedGas  uint64
}

// BuildDryRunSummary composes the human-readable preview and risk
// classification for a prospective transaction. Pure and deterministic:
// the same inputs always produce the same summary.
//
// Risk policy: high when amount plus gas exceeds the sender balance, medium
// when the amount is more than half the balance, low otherwise. The
// dispatcher treats only high as a block on unattended execution.
func BuildDryRunSummary(args DryRunArgs) models.DryRunSummary {
	return models.DryRunSummary{
		ActionDescription: describeAction(args),
		RiskLevel:         classifyRisk(args),
		EstimatedGasFee:   float64(args.EstimatedGas) / constants.MistPerSui,
	}
}

func describeAction(args DryRunArgs) string {
	amount, err := utils.FromSmallestUnits(args.Amount, args.Token.Decimals())
	if err != nil {
		amount = args.Amount
	}

	switch args.Action {
	case models.TransactionActionStakeToken:
		return fmt.Sprintf("stake %s %s with the staking pool", amount, args.Token)
	case models.TransactionActionUnstakeToken:
		return fmt.Sprintf("unstake %s %s from the staking pool", amount, args.Token)
	case models.TransactionActionTransferToken:
		return fmt.Sprintf("transfer %s %s to %s", amount, args.Token, args.Recipient)
	default:
		return fmt.Sprintf("execute %s", args.Action)
	}
}

func classifyRisk(args DryRunArgs) models.RiskLevel {
	amount, ok := new(big.Int).SetString(args.Amount, 10)
	if !ok {
		return models.RiskLevelHigh
	}
	balance, ok := new(big.Int).SetString(args.SenderBalance, 10)
	if !ok {
		return models.RiskLevelHigh
	}

	total := new(big.Int).Set(amount)
	if args.Token == models.TokenTypeSUI {
		// Gas is paid in SUI, so it competes with the transferred amount.
		total.Add(total, new(big.Int).SetUint64(args.EstimatedGas))
	}
	if total.Cmp(balance) > 0 {
		return models.RiskLevelHigh
	}

	half := new(big.Int).Rsh(balance, 1)
	if amount.Cmp(half) > 0 {
		return models.RiskLevelMedium
	}
	return models.RiskLevelLow
}
