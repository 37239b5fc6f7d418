package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"

	"github.com/suipilot/suipilot/internal/models"
	"golang.org/x/crypto/scrypt"
)

const (
	// scrypt parameters. N=2^15 keeps derivation fast enough for a
	// per-request server-side operation while staying memory-hard.
	sealScryptN      = 1 << 15
	sealScryptR      = 8
	sealScryptP      = 1
	sealScryptKeyLen = 32
	sealSaltLen      = 32
	sealNonceLen     = 12
)

// SealService encrypts and decrypts contact payloads. Each user's records
// are sealed under a key derived from the server master key and the user's
// address, so one user's blob is useless to another.
//
// Blob layout: salt || nonce || AES-256-GCM ciphertext.
type SealService interface {
	EncryptContact(userAddress string, record models.ContactRecord) ([]byte, error)
	EncryptContacts(userAddress string, contacts []models.ContactRecord) ([]byte, error)
	DecryptContacts(userAddress string, blob []byte) ([]models.ContactRecord, error)
}

type sealService struct {
	masterKey []byte
}

func NewSealService(masterKey string) (SealService, error) {
	if masterKey == "" {
		return nil, fmt.Errorf("empty seal master key")
	}
	return &sealService{masterKey: []byte(masterKey)}, nil
}

func (s *sealService) deriveKey(userAddress string, salt []byte) ([]byte, error) {
	secret := append(append([]byte{}, s.masterKey...), []byte(userAddress)...)
	key, err := scrypt.Key(secret, salt, sealScryptN, sealScryptR, sealScryptP, sealScryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

func (s *sealService) seal(userAddress string, plaintext []byte) ([]byte, error) {
	salt := make([]byte, sealSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := s.deriveKey(userAddress, salt)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, sealNonceLen)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, sealNonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	blob := make([]byte, 0, sealSaltLen+sealNonceLen+len(plaintext)+gcm.Overhead())
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = gcm.Seal(blob, nonce, plaintext, nil)
	return blob, nil
}

func (s *sealService) open(userAddress string, blob []byte) ([]byte, error) {
	if len(blob) < sealSaltLen+sealNonceLen {
		return nil, fmt.Errorf("encrypted blob too short")
	}
	salt := blob[:sealSaltLen]
	nonce := blob[sealSaltLen : sealSaltLen+sealNonceLen]
	ciphertext := blob[sealSaltLen+sealNonceLen:]

	key, err := s.deriveKey(userAddress, salt)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, sealNonceLen)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt blob: %w", err)
	}
	return plaintext, nil
}

func (s *sealService) EncryptContact(userAddress string, record models.ContactRecord) ([]byte, error) {
	plaintext, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contact: %w", err)
	}
	return s.seal(userAddress, plaintext)
}

func (s *sealService) EncryptContacts(userAddress string, contacts []models.ContactRecord) ([]byte, error) {
	plaintext, err := json.Marshal(contacts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contacts: %w", err)
	}
	return s.seal(userAddress, plaintext)
}

func (s *sealService) DecryptContacts(userAddress string, blob []byte) ([]models.ContactRecord, error) {
	plaintext, err := s.open(userAddress, blob)
	if err != nil {
		return nil, err
	}
	var contacts []models.ContactRecord
	if err := json.Unmarshal(plaintext, &contacts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contacts: %w", err)
	}
	return contacts, nil
}
