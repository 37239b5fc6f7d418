package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/suipilot/suipilot/internal/models"
	"gorm.io/gorm"
)

// maxSaveRetries bounds the compare-and-swap retry loop when another writer
// (e.g. a second process sharing the database) swaps the blob id mid-save.
const maxSaveRetries = 3

// VaultService maps each user to their single most-recent encrypted contact
// blob. Saves are full rewrites: the existing record set is downloaded,
// decrypted, extended and re-uploaded, and the stored blob id is swapped.
// The previous blob becomes unreferenced but is not deleted. No
// deduplication is performed; saving the same contact twice keeps both.
type VaultService interface {
	SaveContact(userAddress string, record models.ContactRecord) (string, error)
	ListContacts(userAddress string) ([]models.ContactRecord, error)
}

type vaultService struct {
	db     *gorm.DB
	walrus WalrusService
	seal   SealService
	// locks serializes saves per user key; the version CAS below guards
	// against writers outside this process.
	locks sync.Map
}

func NewVaultService(db *gorm.DB, walrus WalrusService, seal SealService) VaultService {
	return &vaultService{db: db, walrus: walrus, seal: seal}
}

func (v *vaultService) userLock(userAddress string) *sync.Mutex {
	lock, _ := v.locks.LoadOrStore(userAddress, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (v *vaultService) SaveContact(userAddress string, record models.ContactRecord) (string, error) {
	if record.Name == "" || record.Address == "" {
		return "", NewValidationError("Contact name and address are required")
	}

	lock := v.userLock(userAddress)
	lock.Lock()
	defer lock.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		blobID, err := v.trySaveContact(userAddress, record)
		if err == nil {
			return blobID, nil
		}
		if !errors.Is(err, errVaultConflict) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("failed to save contact after %d attempts: %w", maxSaveRetries, lastErr)
}

var errVaultConflict = errors.New("vault entry changed concurrently")

func (v *vaultService) trySaveContact(userAddress string, record models.ContactRecord) (string, error) {
	var entry models.ContactVaultEntry
	err := v.db.Where("user_address = ?", userAddress).First(&entry).Error
	hasEntry := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to read vault entry: %w", err)
	}

	var contacts []models.ContactRecord
	if hasEntry {
		blob, err := v.walrus.DownloadBlob(entry.BlobID)
		if err != nil {
			return "", fmt.Errorf("failed to download existing contacts: %w", err)
		}
		contacts, err = v.seal.DecryptContacts(userAddress, blob)
		if err != nil {
			return "", fmt.Errorf("failed to decrypt existing contacts: %w", err)
		}
	}
	contacts = append(contacts, record)

	encrypted, err := v.seal.EncryptContacts(userAddress, contacts)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt contacts: %w", err)
	}
	blobID, err := v.walrus.UploadBlob(encrypted)
	if err != nil {
		return "", fmt.Errorf("failed to upload contacts: %w", err)
	}

	if !hasEntry {
		create := models.ContactVaultEntry{UserAddress: userAddress, BlobID: blobID, Version: 1}
		if err := v.db.Create(&create).Error; err != nil {
			// A concurrent first save for the same user won the insert.
			return "", errVaultConflict
		}
		return blobID, nil
	}

	// Optimistic swap: only replace the blob id if nobody moved the entry
	// since we read it.
	result := v.db.Model(&models.ContactVaultEntry{}).
		Where("user_address = ? AND version = ?", userAddress, entry.Version).
		Updates(map[string]any{"blob_id": blobID, "version": entry.Version + 1})
	if result.Error != nil {
		return "", fmt.Errorf("failed to update vault entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return "", errVaultConflict
	}
	return blobID, nil
}

// ListContacts returns every record saved for the user, or an empty slice
// when nothing is on record.
func (v *vaultService) ListContacts(userAddress string) ([]models.ContactRecord, error) {
	var entry models.ContactVaultEntry
	err := v.db.Where("user_address = ?", userAddress).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []models.ContactRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read vault entry: %w", err)
	}

	blob, err := v.walrus.DownloadBlob(entry.BlobID)
	if err != nil {
		return nil, fmt.Errorf("failed to download contacts: %w", err)
	}
	contacts, err := v.seal.DecryptContacts(userAddress, blob)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt contacts: %w", err)
	}
	return contacts, nil
}
