package services

import "github.com/suipilot/suipilot/internal/models"

type TransferTransactionArgs struct {
	Sender    string           `validate:"required"`
	Recipient string           `validate:"required"`
	Amount    string           `validate:"required,number"` // smallest units
	Token     models.TokenType `validate:"required"`
}

type StakeTransactionArgs struct {
	Sender string `validate:"required"`
	Amount string `validate:"required,number"` // smallest units (MIST)
}

type UnstakeTransactionArgs struct {
	Sender string `validate:"required"`
	Amount string `validate:"required,number"` // smallest units (MIST)
}

type AddContactTxArgs struct {
	Sender        string `validate:"required"`
	AddressBookID string `validate:"required"`
	ContactKey    string `validate:"required"`
	EncryptedData []byte `validate:"required"`
	Nonce         string `validate:"required"`
	Timestamp     int64  `validate:"required"`
}

// BalanceInfo is a coin balance in both raw smallest units and a
// human-readable form.
type BalanceInfo struct {
	Token     models.TokenType `json:"token"`
	Balance   string           `json:"balance"`
	Formatted string           `json:"balance_formatted"`
}

// StakedObject is a single StakedSui object owned by a user.
type StakedObject struct {
	StakedSuiID string `json:"staked_sui_id"`
	Principal   string `json:"principal"`
	Status      string `json:"status"`
}

// StakeInfo aggregates a user's stakes across validators.
type StakeInfo struct {
	Token        models.TokenType `json:"token"`
	StakedAmount string           `json:"staked_amount"`
	Formatted    string           `json:"staked_amount_formatted"`
	Stakes       []StakedObject   `json:"stakes,omitempty"`
}
