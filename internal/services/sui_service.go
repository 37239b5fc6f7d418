package services

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/suipilot/suipilot/internal/constants"
	"github.com/suipilot/suipilot/internal/models"
	"github.com/suipilot/suipilot/internal/utils"
)

// SuiService is the gateway to the Sui fullnode: balance and stake reads,
// transaction construction, and submission.
type SuiService interface {
	GetBalance(address string, token models.TokenType) (*BalanceInfo, error)
	GetStakeInfo(address string) (*StakeInfo, error)
	EstimateGasFee() (uint64, error)
	GetAddressBook(owner string) (*models.AddressBook, error)

	BuildCreateAddressBookTx(sender string) models.MoveCallMetadata
	BuildAddContactTx(args AddContactTxArgs) (models.MoveCallMetadata, error)
	BuildTransferTransaction(args TransferTransactionArgs) ([]byte, error)
	BuildStakeTransaction(args StakeTransactionArgs) ([]byte, error)
	BuildUnstakeTransaction(args UnstakeTransactionArgs) ([]byte, error)

	ExecuteTransactionBlock(txBytesB64 string, signatures []string) (*models.TransactionResult, error)
}

type SuiServiceConfig struct {
	RPCURL string
	// StakingValidator receives stake requests.
	StakingValidator string
	// AddressBookPackage is the published address_book Move package id.
	AddressBookPackage string
}

type suiService struct {
	rpc                *utils.RPCClient
	validator          *validator.Validate
	stakingValidator   string
	addressBookPackage string
}

func NewSuiService(cfg SuiServiceConfig) SuiService {
	return &suiService{
		rpc:                utils.NewRPCClient(cfg.RPCURL),
		validator:          validator.New(),
		stakingValidator:   cfg.StakingValidator,
		addressBookPackage: cfg.AddressBookPackage,
	}
}

type coinBalanceResult struct {
	CoinType     string `json:"coinType"`
	TotalBalance string `json:"totalBalance"`
}

// GetBalance queries the total balance of a coin type for an address.
func (s *suiService) GetBalance(address string, token models.TokenType) (*BalanceInfo, error) {
	var result coinBalanceResult
	if err := s.rpc.CallInto(&result, "suix_getBalance", []interface{}{address, token.CoinType()}); err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	formatted, err := utils.FromSmallestUnits(result.TotalBalance, token.Decimals())
	if err != nil {
		return nil, fmt.Errorf("unexpected balance value %q: %w", result.TotalBalance, err)
	}
	return &BalanceInfo{Token: token, Balance: result.TotalBalance, Formatted: formatted}, nil
}

type delegatedStakeResult struct {
	ValidatorAddress string `json:"validatorAddress"`
	Stakes           []struct {
		StakedSuiID string `json:"stakedSuiId"`
		Principal   string `json:"principal"`
		Status      string `json:"status"`
	} `json:"stakes"`
}

// GetStakeInfo sums the principal of every StakedSui object the user owns.
func (s *suiService) GetStakeInfo(address string) (*StakeInfo, error) {
	var delegations []delegatedStakeResult
	if err := s.rpc.CallInto(&delegations, "suix_getStakes", []interface{}{address}); err != nil {
		return nil, fmt.Errorf("failed to get stakes: %w", err)
	}

	total := new(big.Int)
	var stakes []StakedObject
	for _, delegation := range delegations {
		for _, stake := range delegation.Stakes {
			principal, ok := new(big.Int).SetString(stake.Principal, 10)
			if !ok {
				return nil, fmt.Errorf("unexpected stake principal %q", stake.Principal)
			}
			total.Add(total, principal)
			stakes = append(stakes, StakedObject{
				StakedSuiID: stake.StakedSuiID,
				Principal:   stake.Principal,
				Status:      stake.Status,
			})
		}
	}

	formatted, err := utils.FromSmallestUnits(total.String(), models.TokenTypeSUI.Decimals())
	if err != nil {
		return nil, err
	}
	return &StakeInfo{
		Token:        models.TokenTypeSUI,
		StakedAmount: total.String(),
		Formatted:    formatted,
		Stakes:       stakes,
	}, nil
}

// EstimateGasFee returns a gas-fee estimate in MIST based on the current
// reference gas price.
func (s *suiService) EstimateGasFee() (uint64, error) {
	var gasPrice string
	if err := s.rpc.CallInto(&gasPrice, "suix_getReferenceGasPrice", []interface{}{}); err != nil {
		return 0, fmt.Errorf("failed to get reference gas price: %w", err)
	}
	price, err := strconv.ParseUint(gasPrice, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected reference gas price %q: %w", gasPrice, err)
	}
	return price * constants.GasUnitEstimate, nil
}

type ownedObjectsResult struct {
	Data []struct {
		Data struct {
			ObjectID string `json:"objectId"`
			Type     string `json:"type"`
		} `json:"data"`
	} `json:"data"`
}

// GetAddressBook looks up the user's on-chain AddressBook object. Returns
// nil (not an error) when the user has none.
func (s *suiService) GetAddressBook(owner string) (*models.AddressBook, error) {
	query := map[string]interface{}{
		"filter":  map[string]interface{}{"StructType": s.addressBookTarget("AddressBook")},
		"options": map[string]interface{}{"showType": true},
	}

	var result ownedObjectsResult
	if err := s.rpc.CallInto(&result, "suix_getOwnedObjects", []interface{}{owner, query, nil, 1}); err != nil {
		return nil, fmt.Errorf("failed to query address book: %w", err)
	}
	if len(result.Data) == 0 {
		return nil, nil
	}
	return &models.AddressBook{ObjectID: result.Data[0].Data.ObjectID, Owner: owner}, nil
}

// BuildCreateAddressBookTx returns the Move-call metadata for the one-time
// address book creation. Pure; the wallet assembles and signs the call.
func (s *suiService) BuildCreateAddressBookTx(sender string) models.MoveCallMetadata {
	return models.MoveCallMetadata{
		TransactionType: "moveCall",
		Target:          s.addressBookPackage + "::address_book::create_address_book",
		Arguments:       []any{},
		TypeArguments:   []string{},
	}
}

// BuildAddContactTx returns the Move-call metadata that appends an encrypted
// contact entry to the user's address book.
func (s *suiService) BuildAddContactTx(args AddContactTxArgs) (models.MoveCallMetadata, error) {
	if err := s.validator.Struct(args); err != nil {
		return models.MoveCallMetadata{}, err
	}
	return models.MoveCallMetadata{
		TransactionType: "moveCall",
		Target:          s.addressBookPackage + "::address_book::add_contact",
		Arguments: []any{
			args.AddressBookID,
			args.ContactKey,
			base64.StdEncoding.EncodeToString(args.EncryptedData),
			args.Nonce,
			args.Timestamp,
		},
		TypeArguments: []string{},
	}, nil
}

type transactionBytesResult struct {
	TxBytes string `json:"txBytes"`
}

type coinPage struct {
	Data []struct {
		CoinObjectID string `json:"coinObjectId"`
		Balance      string `json:"balance"`
	} `json:"data"`
	HasNextPage bool   `json:"hasNextPage"`
	NextCursor  string `json:"nextCursor"`
}

// selectCoins picks coin objects of the given type until they cover the
// required amount.
func (s *suiService) selectCoins(owner, coinType string, required *big.Int) ([]string, error) {
	selected := []string{}
	covered := new(big.Int)
	var cursor interface{}

	for {
		var page coinPage
		if err := s.rpc.CallInto(&page, "suix_getCoins", []interface{}{owner, coinType, cursor, 50}); err != nil {
			return nil, fmt.Errorf("failed to list coins: %w", err)
		}
		for _, coin := range page.Data {
			balance, ok := new(big.Int).SetString(coin.Balance, 10)
			if !ok {
				return nil, fmt.Errorf("unexpected coin balance %q", coin.Balance)
			}
			selected = append(selected, coin.CoinObjectID)
			covered.Add(covered, balance)
			if covered.Cmp(required) >= 0 {
				return selected, nil
			}
		}
		if !page.HasNextPage {
			break
		}
		cursor = page.NextCursor
	}

	return nil, fmt.Errorf("insufficient coin balance: need %s, have %s", required, covered)
}

// BuildTransferTransaction constructs an unsigned transfer and returns the
// raw transaction bytes.
func (s *suiService) BuildTransferTransaction(args TransferTransactionArgs) ([]byte, error) {
	if err := s.validator.Struct(args); err != nil {
		return nil, err
	}

	amount, ok := new(big.Int).SetString(args.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("unexpected amount %q", args.Amount)
	}

	var result transactionBytesResult
	if args.Token == models.TokenTypeSUI {
		// paySui draws gas from the input coins, so they must also cover
		// the budget.
		required := new(big.Int).Add(amount, big.NewInt(constants.DefaultGasBudget))
		coins, err := s.selectCoins(args.Sender, args.Token.CoinType(), required)
		if err != nil {
			return nil, err
		}
		params := []interface{}{
			args.Sender, coins,
			[]string{args.Recipient}, []string{args.Amount},
			strconv.Itoa(constants.DefaultGasBudget),
		}
		if err := s.rpc.CallInto(&result, "unsafe_paySui", params); err != nil {
			return nil, fmt.Errorf("failed to build transfer transaction: %w", err)
		}
	} else {
		coins, err := s.selectCoins(args.Sender, args.Token.CoinType(), amount)
		if err != nil {
			return nil, err
		}
		params := []interface{}{
			args.Sender, coins,
			[]string{args.Recipient}, []string{args.Amount},
			nil, strconv.Itoa(constants.DefaultGasBudget),
		}
		if err := s.rpc.CallInto(&result, "unsafe_pay", params); err != nil {
			return nil, fmt.Errorf("failed to build transfer transaction: %w", err)
		}
	}

	return decodeTxBytes(result.TxBytes)
}

// BuildStakeTransaction constructs an unsigned add-stake request against the
// configured validator.
func (s *suiService) BuildStakeTransaction(args StakeTransactionArgs) ([]byte, error) {
	if err := s.validator.Struct(args); err != nil {
		return nil, err
	}
	if s.stakingValidator == "" {
		return nil, fmt.Errorf("no staking validator configured")
	}

	amount, ok := new(big.Int).SetString(args.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("unexpected amount %q", args.Amount)
	}
	required := new(big.Int).Add(amount, big.NewInt(constants.DefaultGasBudget))
	coins, err := s.selectCoins(args.Sender, constants.SuiCoinType, required)
	if err != nil {
		return nil, err
	}

	var result transactionBytesResult
	params := []interface{}{
		args.Sender, coins, args.Amount, s.stakingValidator,
		nil, strconv.Itoa(constants.DefaultGasBudget),
	}
	if err := s.rpc.CallInto(&result, "unsafe_requestAddStake", params); err != nil {
		return nil, fmt.Errorf("failed to build stake transaction: %w", err)
	}
	return decodeTxBytes(result.TxBytes)
}

// BuildUnstakeTransaction constructs an unsigned withdraw-stake request for
// the first staked object whose principal covers the amount.
func (s *suiService) BuildUnstakeTransaction(args UnstakeTransactionArgs) ([]byte, error) {
	if err := s.validator.Struct(args); err != nil {
		return nil, err
	}

	info, err := s.GetStakeInfo(args.Sender)
	if err != nil {
		return nil, err
	}

	amount, ok := new(big.Int).SetString(args.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("unexpected amount %q", args.Amount)
	}

	var stakedSuiID string
	for _, stake := range info.Stakes {
		principal, ok := new(big.Int).SetString(stake.Principal, 10)
		if !ok {
			continue
		}
		if principal.Cmp(amount) >= 0 {
			stakedSuiID = stake.StakedSuiID
			break
		}
	}
	if stakedSuiID == "" {
		return nil, fmt.Errorf("no staked object covers %s MIST", args.Amount)
	}

	var result transactionBytesResult
	params := []interface{}{
		args.Sender, stakedSuiID,
		nil, strconv.Itoa(constants.DefaultGasBudget),
	}
	if err := s.rpc.CallInto(&result, "unsafe_requestWithdrawStake", params); err != nil {
		return nil, fmt.Errorf("failed to build unstake transaction: %w", err)
	}
	return decodeTxBytes(result.TxBytes)
}

type executeTransactionResult struct {
	Digest  string `json:"digest"`
	Effects struct {
		Status struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		} `json:"status"`
		GasUsed map[string]any `json:"gasUsed,omitempty"`
	} `json:"effects"`
}

// ExecuteTransactionBlock submits a signed transaction and waits for local
// execution effects.
func (s *suiService) ExecuteTransactionBlock(txBytesB64 string, signatures []string) (*models.TransactionResult, error) {
	options := map[string]interface{}{"showEffects": true}
	params := []interface{}{txBytesB64, signatures, options, "WaitForLocalExecution"}

	var result executeTransactionResult
	if err := s.rpc.CallInto(&result, "sui_executeTransactionBlock", params); err != nil {
		return nil, fmt.Errorf("failed to execute transaction: %w", err)
	}

	if result.Effects.Status.Status != "success" {
		return &models.TransactionResult{
			Success:           false,
			TransactionDigest: result.Digest,
			Error:             result.Effects.Status.Error,
		}, nil
	}

	return &models.TransactionResult{
		Success:           true,
		TransactionDigest: result.Digest,
		Effects: map[string]any{
			"status":   result.Effects.Status.Status,
			"gas_used": result.Effects.GasUsed,
		},
	}, nil
}

func (s *suiService) addressBookTarget(structName string) string {
	return s.addressBookPackage + "::address_book::" + structName
}

func decodeTxBytes(encoded string) ([]byte, error) {
	txBytes, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction bytes: %w", err)
	}
	return txBytes, nil
}
