package services

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/suipilot/suipilot/internal/models"
	"golang.org/x/crypto/blake2b"
)

// ed25519SchemeFlag is the Sui signature-scheme flag for ed25519 keys.
const ed25519SchemeFlag byte = 0x00

// suiIntentPrefix is the intent message prefix for transaction data
// (scope=TransactionData, version=0, app=Sui).
var suiIntentPrefix = []byte{0, 0, 0}

// WalletSigner holds a private key and can sign and submit a built
// transaction.
type WalletSigner interface {
	Address() string
	SignTransactionBlock(txBytes []byte) (string, error)
	ExecuteTransaction(txBytes []byte) (*models.TransactionResult, error)
}

type walletService struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	address    string
	sui        SuiService
}

// NewWalletService constructs a signer from a hex-encoded 32-byte ed25519
// seed (a 64-byte expanded key is accepted too), with or without a 0x
// prefix.
func NewWalletService(privateKeyHex string, sui SuiService) (WalletSigner, error) {
	keyHex := strings.TrimSpace(privateKeyHex)
	if !strings.HasPrefix(keyHex, "0x") {
		keyHex = "0x" + keyHex
	}

	raw, err := hexutil.Decode(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key encoding: %w", err)
	}

	var privateKey ed25519.PrivateKey
	switch len(raw) {
	case ed25519.SeedSize:
		privateKey = ed25519.NewKeyFromSeed(raw)
	case ed25519.PrivateKeySize:
		privateKey = ed25519.PrivateKey(raw)
	default:
		return nil, fmt.Errorf("invalid private key length %d", len(raw))
	}

	publicKey := privateKey.Public().(ed25519.PublicKey)
	return &walletService{
		privateKey: privateKey,
		publicKey:  publicKey,
		address:    deriveSuiAddress(publicKey),
		sui:        sui,
	}, nil
}

// deriveSuiAddress hashes the scheme flag and public key with blake2b-256.
func deriveSuiAddress(publicKey ed25519.PublicKey) string {
	payload := append([]byte{ed25519SchemeFlag}, publicKey...)
	digest := blake2b.Sum256(payload)
	return hexutil.Encode(digest[:])
}

func (w *walletService) Address() string {
	return w.address
}

// SignTransactionBlock signs the blake2b digest of the intent message and
// returns the serialized signature (flag || sig || pubkey, base64).
func (w *walletService) SignTransactionBlock(txBytes []byte) (string, error) {
	if len(txBytes) == 0 {
		return "", fmt.Errorf("empty transaction bytes")
	}

	message := append(append([]byte{}, suiIntentPrefix...), txBytes...)
	digest := blake2b.Sum256(message)
	signature := ed25519.Sign(w.privateKey, digest[:])

	serialized := make([]byte, 0, 1+len(signature)+len(w.publicKey))
	serialized = append(serialized, ed25519SchemeFlag)
	serialized = append(serialized, signature...)
	serialized = append(serialized, w.publicKey...)
	return base64.StdEncoding.EncodeToString(serialized), nil
}

// ExecuteTransaction signs the transaction and submits it through the
// gateway.
func (w *walletService) ExecuteTransaction(txBytes []byte) (*models.TransactionResult, error) {
	signature, err := w.SignTransactionBlock(txBytes)
	if err != nil {
		return nil, err
	}
	return w.sui.ExecuteTransactionBlock(
		base64.StdEncoding.EncodeToString(txBytes),
		[]string{signature},
	)
}
