package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/suipilot/suipilot/internal/models"
	"github.com/suipilot/suipilot/internal/utils"
)

// DispatcherService routes a classified intent to its action flow and
// produces exactly one ChatResponse. Domain rejections (no address book,
// insufficient stake, duplicate creation) come back as normal responses with
// ReadyToExecute=false; only client-input problems and infrastructure
// failures are returned as errors.
type DispatcherService interface {
	Dispatch(intent models.Intent, userAddress string) (*models.ChatResponse, error)
}

type actionHandler func(intent models.Intent, userAddress string) (*models.ChatResponse, error)

type dispatcherService struct {
	sui      SuiService
	seal     SealService
	handlers map[models.IntentAction]actionHandler
}

func NewDispatcherService(sui SuiService, seal SealService) DispatcherService {
	d := &dispatcherService{sui: sui, seal: seal}
	d.handlers = map[models.IntentAction]actionHandler{
		models.IntentActionAmbiguous:         d.handleAmbiguous,
		models.IntentActionGetBalance:        d.handleGetBalance,
		models.IntentActionGetStakeInfo:      d.handleGetStakeInfo,
		models.IntentActionStakeToken:        d.handleStakeToken,
		models.IntentActionUnstakeToken:      d.handleUnstakeToken,
		models.IntentActionTransferToken:     d.handleTransferToken,
		models.IntentActionCreateAddressBook: d.handleCreateAddressBook,
		models.IntentActionSaveContact:       d.handleSaveContact,
		models.IntentActionListContacts:      d.handleListContacts,
	}
	return d
}

func (d *dispatcherService) Dispatch(intent models.Intent, userAddress string) (*models.ChatResponse, error) {
	handler, ok := d.handlers[intent.Action]
	if !ok {
		return &models.ChatResponse{
			Intent:         intent,
			ReadyToExecute: false,
			Message:        "I didn't understand that. Could you rephrase?",
		}, nil
	}
	return handler(intent, userAddress)
}

func (d *dispatcherService) handleAmbiguous(intent models.Intent, _ string) (*models.ChatResponse, error) {
	message := intent.ClarificationQuestion
	if message == "" {
		message = "Could you provide more details?"
	}
	return &models.ChatResponse{Intent: intent, ReadyToExecute: false, Message: message}, nil
}

func (d *dispatcherService) handleGetBalance(intent models.Intent, userAddress string) (*models.ChatResponse, error) {
	if userAddress == "" {
		return nil, NewValidationError("User address required for balance query")
	}

	token := models.ParseTokenType(intent.ParsedData.String("token"))
	balance, err := d.sui.GetBalance(userAddress, token)
	if err != nil {
		return nil, err
	}

	return &models.ChatResponse{
		Intent:         intent,
		ReadyToExecute: false,
		Message:        fmt.Sprintf("Your %s balance is %s", balance.Token, balance.Formatted),
	}, nil
}

func (d *dispatcherService) handleGetStakeInfo(intent models.Intent, userAddress string) (*models.ChatResponse, error) {
	if userAddress == "" {
		return nil, NewValidationError("User address required for stake info query")
	}

	stake, err := d.sui.GetStakeInfo(userAddress)
	if err != nil {
		return nil, err
	}

	return &models.ChatResponse{
		Intent:         intent,
		ReadyToExecute: false,
		Message:        fmt.Sprintf("You have staked %s %s in the staking pool.", stake.Formatted, stake.Token),
	}, nil
}

func (d *dispatcherService) handleStakeToken(intent models.Intent, userAddress string) (*models.ChatResponse, error) {
	if userAddress == "" {
		return nil, NewValidationError("User address required for staking")
	}

	token := models.ParseTokenType(intent.ParsedData.String("token"))
	amountStr := intent.ParsedData.StringOr("amount", "0")
	amountUnits, err := utils.ToSmallestUnits(amountStr, token.Decimals())
	if err != nil {
		return nil, fmt.Errorf("could not parse stake amount: %w", err)
	}

	balance, estimatedGas, err := d.fetchBalanceAndGas(userAddress, token)
	if err != nil {
		return nil, err
	}

	dryRun := BuildDryRunSummary(DryRunArgs{
		Action:        models.TransactionActionStakeToken,
		Recipient:     "Staking Pool",
		Amount:        amountUnits,
		Token:         token,
		SenderBalance: balance.Balance,
		EstimatedGas:  estimatedGas,
	})

	return &models.ChatResponse{
		Intent:          intent,
		DryRun:          &dryRun,
		ReadyToExecute:  dryRun.RiskLevel != models.RiskLevelHigh,
		Message:         fmt.Sprintf("Ready to stake %s %s. Estimated gas: ~%g SUI.", amountStr, token, dryRun.EstimatedGasFee),
		TransactionData: models.NewStakePayload(amountUnits, token),
	}, nil
}

func (d *dispatcherService) handleUnstakeToken(intent models.Intent, userAddress string) (*models.ChatResponse, error) {
	if userAddress == "" {
		return nil, NewValidationError("User address required for unstaking")
	}

	token := models.ParseTokenType(intent.ParsedData.String("token"))
	amountStr := intent.ParsedData.StringOr("amount", "0")
	amountUnits, err := utils.ToSmallestUnits(amountStr, token.Decimals())
	if err != nil {
		return nil, fmt.Errorf("could not parse unstake amount: %w", err)
	}

	stake, err := d.sui.GetStakeInfo(userAddress)
	if err != nil {
		return nil, err
	}

	// Requested amount must not exceed what is currently staked. This is an
	// expected branch of the flow, not an error.
	if cmpUnits(amountUnits, stake.StakedAmount) > 0 {
		log.Printf("insufficient stake for %s: requested %s, has %s", userAddress, amountUnits, stake.StakedAmount)
		return &models.ChatResponse{
			Intent:         intent,
			ReadyToExecute: false,
			Message: fmt.Sprintf("Insufficient staked amount. You have %s %s staked, but trying to unstake %s %s.",
				stake.Formatted, token, amountStr, token),
		}, nil
	}

	balance, estimatedGas, err := d.fetchBalanceAndGas(userAddress, token)
	if err != nil {
		return nil, err
	}

	dryRun := BuildDryRunSummary(DryRunArgs{
		Action:        models.TransactionActionUnstakeToken,
		Recipient:     userAddress,
		Amount:        amountUnits,
		Token:         token,
		SenderBalance: balance.Balance,
		EstimatedGas:  estimatedGas,
	})

	// Unstaking only returns funds, so it is never risk-gated once the
	// amount check passes.
	return &models.ChatResponse{
		Intent:          intent,
		DryRun:          &dryRun,
		ReadyToExecute:  true,
		Message:         fmt.Sprintf("Ready to unstake %s %s. Estimated gas: ~%g SUI.", amountStr, token, dryRun.EstimatedGasFee),
		TransactionData: models.NewUnstakePayload(amountUnits, token),
	}, nil
}

func (d *dispatcherService) handleTransferToken(intent models.Intent, userAddress string) (*models.ChatResponse, error) {
	if userAddress == "" {
		return nil, NewValidationError("User address required for transfers")
	}

	recipient := intent.ParsedData.String("recipient")
	if intent.ParsedData.Bool("is_contact_name") {
		return d.resolveContactRecipient(intent, userAddress, recipient)
	}

	token := models.ParseTokenType(intent.ParsedData.String("token"))
	amountStr := intent.ParsedData.StringOr("amount", "0")
	amountUnits, err := utils.ToSmallestUnits(amountStr, token.Decimals())
	if err != nil {
		return nil, fmt.Errorf("could not parse transfer amount: %w", err)
	}

	balance, estimatedGas, err := d.fetchBalanceAndGas(userAddress, token)
	if err != nil {
		return nil, err
	}

	dryRun := BuildDryRunSummary(DryRunArgs{
		Action:        models.TransactionActionTransferToken,
		Recipient:     recipient,
		Amount:        amountUnits,
		Token:         token,
		SenderBalance: balance.Balance,
		EstimatedGas:  estimatedGas,
	})

	return &models.ChatResponse{
		Intent:          intent,
		DryRun:          &dryRun,
		ReadyToExecute:  dryRun.RiskLevel != models.RiskLevelHigh,
		Message:         fmt.Sprintf("Ready to %s. Estimated gas: ~%g SUI.", dryRun.ActionDescription, dryRun.EstimatedGasFee),
		TransactionData: models.NewTransferPayload(recipient, amountUnits, token),
	}, nil
}

// resolveContactRecipient handles transfers addressed to a saved contact
// name. Full on-chain contact resolution is intentionally unimplemented; the
// user gets an explanatory message either way.
func (d *dispatcherService) resolveContactRecipient(intent models.Intent, userAddress, recipient string) (*models.ChatResponse, error) {
	book, err := d.sui.GetAddressBook(userAddress)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return &models.ChatResponse{
			Intent:         intent,
			ReadyToExecute: false,
			Message: fmt.Sprintf("Contact '%s' not found. You don't have an address book yet. "+
				"Say 'Create my address book' to get started, then save contacts with 'Save [name] [address] as [key]'.", recipient),
		}, nil
	}

	return &models.ChatResponse{
		Intent:         intent,
		ReadyToExecute: false,
		Message: fmt.Sprintf("Contact name resolution is coming soon! For now, please use the full wallet address. "+
			"You can check your saved contacts in Sui Explorer using your address book ID: %s",
			utils.ShortenObjectID(book.ObjectID, 20)),
	}, nil
}

func (d *dispatcherService) handleCreateAddressBook(intent models.Intent, userAddress string) (*models.ChatResponse, error) {
	if userAddress == "" {
		return nil, NewValidationError("User address required to create address book")
	}

	// One address book per user. A second request short-circuits without
	// issuing another build.
	existing, err := d.sui.GetAddressBook(userAddress)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &models.ChatResponse{
			Intent:         intent,
			ReadyToExecute: false,
			Message: fmt.Sprintf("You already have an address book (ID: %s). You can start saving contacts!",
				utils.ShortenObjectID(existing.ObjectID, 16)),
		}, nil
	}

	call := d.sui.BuildCreateAddressBookTx(userAddress)
	return &models.ChatResponse{
		Intent:         intent,
		ReadyToExecute: true,
		Message: "Ready to create your on-chain address book. This is a one-time setup that stores " +
			"your contacts permanently on Sui. Estimated gas: ~0.01 SUI.",
		TransactionData: models.NewCreateAddressBookPayload(call),
	}, nil
}

func (d *dispatcherService) handleSaveContact(intent models.Intent, userAddress string) (*models.ChatResponse, error) {
	if userAddress == "" {
		return nil, NewValidationError("User address required to save contact")
	}

	contactKey := normalizeContactKey(intent.ParsedData.String("contact_key"))
	contactName := intent.ParsedData.String("contact_name")
	contactAddress := intent.ParsedData.String("contact_address")
	notes := intent.ParsedData.String("notes")

	if contactKey == "" || contactAddress == "" {
		return &models.ChatResponse{
			Intent:         intent,
			ReadyToExecute: false,
			Message: "I need a contact name/key and wallet address to save. " +
				"Example: 'Save Alice's address 0x123... as alice'",
		}, nil
	}

	book, err := d.sui.GetAddressBook(userAddress)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return &models.ChatResponse{
			Intent:         intent,
			ReadyToExecute: false,
			Message:        "You don't have an address book yet. Say 'Create my address book' first!",
		}, nil
	}

	encrypted, err := d.seal.EncryptContact(userAddress, models.ContactRecord{
		Name:    contactName,
		Address: contactAddress,
		Notes:   notes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt contact: %w", err)
	}

	call, err := d.sui.BuildAddContactTx(AddContactTxArgs{
		Sender:        userAddress,
		AddressBookID: book.ObjectID,
		ContactKey:    contactKey,
		EncryptedData: encrypted,
		Nonce:         uuid.New().String(),
		Timestamp:     time.Now().Unix(),
	})
	if err != nil {
		return nil, err
	}

	return &models.ChatResponse{
		Intent:         intent,
		ReadyToExecute: true,
		Message: fmt.Sprintf("Ready to save '%s' as '%s' to your address book. "+
			"This will be encrypted and stored on-chain. Estimated gas: ~0.02 SUI.", contactName, contactKey),
		TransactionData: models.NewSaveContactPayload(call, contactKey, contactName),
	}, nil
}

func (d *dispatcherService) handleListContacts(intent models.Intent, userAddress string) (*models.ChatResponse, error) {
	if userAddress == "" {
		return nil, NewValidationError("User address required to list contacts")
	}

	book, err := d.sui.GetAddressBook(userAddress)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return &models.ChatResponse{
			Intent:         intent,
			ReadyToExecute: false,
			Message:        "You don't have an address book yet. Say 'Create my address book' to get started!",
		}, nil
	}

	// Decoding the on-chain contact map is still pending; for now only the
	// book's existence is confirmed.
	return &models.ChatResponse{
		Intent:         intent,
		ReadyToExecute: false,
		Message: fmt.Sprintf("Your address book (ID: %s) is ready. Contact listing from on-chain data "+
			"is coming soon! For now, you can save contacts using 'Save [name] [address] as [key]'.",
			utils.ShortenObjectID(book.ObjectID, 16)),
	}, nil
}

// fetchBalanceAndGas issues the balance query and the gas estimate
// concurrently; neither depends on the other's result.
func (d *dispatcherService) fetchBalanceAndGas(address string, token models.TokenType) (*BalanceInfo, uint64, error) {
	type balanceResult struct {
		info *BalanceInfo
		err  error
	}
	balanceCh := make(chan balanceResult, 1)
	go func() {
		info, err := d.sui.GetBalance(address, token)
		balanceCh <- balanceResult{info: info, err: err}
	}()

	estimatedGas, gasErr := d.sui.EstimateGasFee()
	balance := <-balanceCh
	if balance.err != nil {
		return nil, 0, balance.err
	}
	if gasErr != nil {
		return nil, 0, gasErr
	}
	return balance.info, estimatedGas, nil
}

// cmpUnits compares two non-negative integer unit strings numerically.
func cmpUnits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func normalizeContactKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
}
