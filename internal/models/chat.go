package models

type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// DryRunSummary is the user-facing preview of a prospective transaction. It is a
// pure derived value and is never persisted.
type DryRunSummary struct {
	ActionDescription string    `json:"action_description"`
	RiskLevel         RiskLevel `json:"risk_level"`
	// EstimatedGasFee is denominated in SUI.
	EstimatedGasFee float64 `json:"estimated_gas_fee"`
}

type ChatRequest struct {
	Message     string         `json:"message"`
	UserAddress string         `json:"user_address,omitempty"`
	Context     map[string]any `json:"context,omitempty"`
}

// ChatResponse is the single response produced for every chat request.
// TransactionData is present iff the action requires a follow-up on-chain
// call through the execute endpoint.
type ChatResponse struct {
	Intent          Intent           `json:"intent"`
	DryRun          *DryRunSummary   `json:"dry_run,omitempty"`
	ReadyToExecute  bool             `json:"ready_to_execute"`
	Message         string           `json:"message"`
	TransactionData *TransactionData `json:"transaction_data,omitempty"`
}
