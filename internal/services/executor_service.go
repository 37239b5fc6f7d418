package services

import (
	"fmt"
	"log"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/suipilot/suipilot/internal/models"
)

// ExecutorService consumes a transaction-data payload produced by a prior
// chat dispatch. With a private key in the payload it builds, signs and
// submits server-side; without one it builds only and hands the encoded
// bytes back for client-side signing.
type ExecutorService interface {
	Execute(req models.ExecuteTransactionRequest) (*models.TransactionResult, error)
}

type executorService struct {
	sui SuiService
	// newSigner is swapped out in tests.
	newSigner func(privateKey string, sui SuiService) (WalletSigner, error)
}

func NewExecutorService(sui SuiService) ExecutorService {
	return &executorService{sui: sui, newSigner: NewWalletService}
}

func (e *executorService) Execute(req models.ExecuteTransactionRequest) (*models.TransactionResult, error) {
	txData := req.TransactionData
	if txData == nil {
		return nil, NewValidationError("Missing transaction data")
	}

	switch txData.Action {
	case models.TransactionActionStakeToken, models.TransactionActionUnstakeToken:
		if txData.Amount == "" {
			return nil, NewValidationError("Missing amount in transaction data")
		}
	case models.TransactionActionTransferToken:
		if txData.Recipient == "" {
			return nil, NewValidationError("Missing recipient address in transaction data")
		}
		if txData.Amount == "" {
			return nil, NewValidationError("Missing amount in transaction data")
		}
	default:
		return nil, NewValidationError("Unsupported action: %s", txData.Action)
	}

	if txData.PrivateKey != "" {
		return e.executeServerSigned(req)
	}
	return e.buildForClientSigning(req)
}

// executeServerSigned builds, signs and submits the transaction with the
// caller-supplied key. Signing or submission failure is fatal for the
// request; there is no retry.
func (e *executorService) executeServerSigned(req models.ExecuteTransactionRequest) (*models.TransactionResult, error) {
	wallet, err := e.newSigner(req.TransactionData.PrivateKey, e.sui)
	if err != nil {
		return nil, NewValidationError("Wallet error: %v", err)
	}

	txBytes, err := e.buildTransactionBytes(wallet.Address(), req.TransactionData)
	if err != nil {
		return nil, err
	}

	result, err := wallet.ExecuteTransaction(txBytes)
	if err != nil {
		return nil, fmt.Errorf("transaction execution failed: %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("transaction execution failed: %s", result.Error)
	}

	log.Printf("transaction executed: action=%s digest=%s", req.TransactionData.Action, result.TransactionDigest)
	return result, nil
}

// buildForClientSigning builds the transaction bytes only and returns them
// hex-encoded. Success here reflects successful construction, not on-chain
// finality.
func (e *executorService) buildForClientSigning(req models.ExecuteTransactionRequest) (*models.TransactionResult, error) {
	if req.UserAddress == "" {
		return nil, NewValidationError("User address required to build transaction for client-side signing")
	}

	txBytes, err := e.buildTransactionBytes(req.UserAddress, req.TransactionData)
	if err != nil {
		return nil, err
	}

	return &models.TransactionResult{
		Success: true,
		Effects: map[string]any{
			"status":            "ready_for_signing",
			"transaction_bytes": hexutil.Encode(txBytes),
			"message":           "Transaction built successfully. Sign with your wallet to execute.",
		},
	}, nil
}

func (e *executorService) buildTransactionBytes(sender string, txData *models.TransactionData) ([]byte, error) {
	switch txData.Action {
	case models.TransactionActionStakeToken:
		return e.sui.BuildStakeTransaction(StakeTransactionArgs{Sender: sender, Amount: txData.Amount})
	case models.TransactionActionUnstakeToken:
		return e.sui.BuildUnstakeTransaction(UnstakeTransactionArgs{Sender: sender, Amount: txData.Amount})
	case models.TransactionActionTransferToken:
		return e.sui.BuildTransferTransaction(TransferTransactionArgs{
			Sender:    sender,
			Recipient: txData.Recipient,
			Amount:    txData.Amount,
			Token:     models.ParseTokenType(string(txData.Token)),
		})
	default:
		return nil, NewValidationError("Unsupported action: %s", txData.Action)
	}
}
