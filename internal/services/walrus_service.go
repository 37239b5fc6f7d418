package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// WalrusService stores and retrieves opaque blobs by content identifier.
// Uploads go through a Walrus publisher, downloads through an aggregator.
type WalrusService interface {
	UploadBlob(data []byte) (string, error)
	DownloadBlob(blobID string) ([]byte, error)
}

type WalrusServiceConfig struct {
	PublisherURL  string
	AggregatorURL string
	// Epochs is how many storage epochs an uploaded blob is kept for.
	Epochs int
}

type walrusService struct {
	publisherURL  string
	aggregatorURL string
	epochs        int
	client        *http.Client
}

func NewWalrusService(cfg WalrusServiceConfig) WalrusService {
	epochs := cfg.Epochs
	if epochs <= 0 {
		epochs = 5
	}
	return &walrusService{
		publisherURL:  strings.TrimRight(cfg.PublisherURL, "/"),
		aggregatorURL: strings.TrimRight(cfg.AggregatorURL, "/"),
		epochs:        epochs,
		client:        &http.Client{Timeout: 60 * time.Second},
	}
}

// walrusStoreResponse covers both store outcomes: a fresh upload
// (newlyCreated) and a blob the network already holds (alreadyCertified).
type walrusStoreResponse struct {
	NewlyCreated *struct {
		BlobObject struct {
			BlobID string `json:"blobId"`
		} `json:"blobObject"`
	} `json:"newlyCreated,omitempty"`
	AlreadyCertified *struct {
		BlobID string `json:"blobId"`
	} `json:"alreadyCertified,omitempty"`
}

func (w *walrusService) UploadBlob(data []byte) (string, error) {
	url := fmt.Sprintf("%s/v1/blobs?epochs=%d", w.publisherURL, w.epochs)
	req, err := http.NewRequest("PUT", url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("blob upload failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("blob upload failed with status %d: %s", resp.StatusCode, body)
	}

	var stored walrusStoreResponse
	if err := json.Unmarshal(body, &stored); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	switch {
	case stored.NewlyCreated != nil:
		return stored.NewlyCreated.BlobObject.BlobID, nil
	case stored.AlreadyCertified != nil:
		return stored.AlreadyCertified.BlobID, nil
	default:
		return "", fmt.Errorf("upload response carried no blob id")
	}
}

func (w *walrusService) DownloadBlob(blobID string) ([]byte, error) {
	url := fmt.Sprintf("%s/v1/blobs/%s", w.aggregatorURL, blobID)
	resp, err := w.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("blob download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blob download failed with status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}
