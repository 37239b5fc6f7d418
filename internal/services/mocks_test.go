package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/suipilot/suipilot/internal/models"
)

// fakeSealService is a JSON passthrough; vault and dispatcher tests don't
// need real cryptography.
type fakeSealService struct{}

func (fakeSealService) EncryptContact(_ string, record models.ContactRecord) ([]byte, error) {
	return json.Marshal(record)
}

func (fakeSealService) EncryptContacts(_ string, contacts []models.ContactRecord) ([]byte, error) {
	return json.Marshal(contacts)
}

func (fakeSealService) DecryptContacts(_ string, blob []byte) ([]models.ContactRecord, error) {
	var contacts []models.ContactRecord
	if err := json.Unmarshal(blob, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// fakeSuiService implements SuiService with per-method function fields so
// each test stubs only what it needs. Unstubbed methods fail loudly.
type fakeSuiService struct {
	getBalance      func(address string, token models.TokenType) (*BalanceInfo, error)
	getStakeInfo    func(address string) (*StakeInfo, error)
	estimateGasFee  func() (uint64, error)
	getAddressBook  func(owner string) (*models.AddressBook, error)
	buildAddContact func(args AddContactTxArgs) (models.MoveCallMetadata, error)
	buildTransfer   func(args TransferTransactionArgs) ([]byte, error)
	buildStake      func(args StakeTransactionArgs) ([]byte, error)
	buildUnstake    func(args UnstakeTransactionArgs) ([]byte, error)
	execute         func(txBytesB64 string, signatures []string) (*models.TransactionResult, error)

	addressBookBuilds int
}

func (f *fakeSuiService) GetBalance(address string, token models.TokenType) (*BalanceInfo, error) {
	if f.getBalance == nil {
		return nil, fmt.Errorf("unexpected GetBalance call")
	}
	return f.getBalance(address, token)
}

func (f *fakeSuiService) GetStakeInfo(address string) (*StakeInfo, error) {
	if f.getStakeInfo == nil {
		return nil, fmt.Errorf("unexpected GetStakeInfo call")
	}
	return f.getStakeInfo(address)
}

func (f *fakeSuiService) EstimateGasFee() (uint64, error) {
	if f.estimateGasFee == nil {
		return 0, fmt.Errorf("unexpected EstimateGasFee call")
	}
	return f.estimateGasFee()
}

func (f *fakeSuiService) GetAddressBook(owner string) (*models.AddressBook, error) {
	if f.getAddressBook == nil {
		return nil, fmt.Errorf("unexpected GetAddressBook call")
	}
	return f.getAddressBook(owner)
}

func (f *fakeSuiService) BuildCreateAddressBookTx(sender string) models.MoveCallMetadata {
	f.addressBookBuilds++
	return models.MoveCallMetadata{
		TransactionType: "moveCall",
		Target:          "0xpkg::address_book::create_address_book",
		Arguments:       []any{},
		TypeArguments:   []string{},
	}
}

func (f *fakeSuiService) BuildAddContactTx(args AddContactTxArgs) (models.MoveCallMetadata, error) {
	if f.buildAddContact == nil {
		return models.MoveCallMetadata{}, fmt.Errorf("unexpected BuildAddContactTx call")
	}
	return f.buildAddContact(args)
}

func (f *fakeSuiService) BuildTransferTransaction(args TransferTransactionArgs) ([]byte, error) {
	if f.buildTransfer == nil {
		return nil, fmt.Errorf("unexpected BuildTransferTransaction call")
	}
	return f.buildTransfer(args)
}

func (f *fakeSuiService) BuildStakeTransaction(args StakeTransactionArgs) ([]byte, error) {
	if f.buildStake == nil {
		return nil, fmt.Errorf("unexpected BuildStakeTransaction call")
	}
	return f.buildStake(args)
}

func (f *fakeSuiService) BuildUnstakeTransaction(args UnstakeTransactionArgs) ([]byte, error) {
	if f.buildUnstake == nil {
		return nil, fmt.Errorf("unexpected BuildUnstakeTransaction call")
	}
	return f.buildUnstake(args)
}

func (f *fakeSuiService) ExecuteTransactionBlock(txBytesB64 string, signatures []string) (*models.TransactionResult, error) {
	if f.execute == nil {
		return nil, fmt.Errorf("unexpected ExecuteTransactionBlock call")
	}
	return f.execute(txBytesB64, signatures)
}

// fakeWalrusService keeps blobs in memory and hands out sequential ids.
type fakeWalrusService struct {
	mu    sync.Mutex
	blobs map[string][]byte
	seq   int
}

func newFakeWalrusService() *fakeWalrusService {
	return &fakeWalrusService{blobs: make(map[string][]byte)}
}

func (f *fakeWalrusService) UploadBlob(data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	id := fmt.Sprintf("blob-%d", f.seq)
	stored := make([]byte, len(data))
	copy(stored, data)
	f.blobs[id] = stored
	return id, nil
}

func (f *fakeWalrusService) DownloadBlob(blobID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blobs[blobID]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", blobID)
	}
	return data, nil
}
