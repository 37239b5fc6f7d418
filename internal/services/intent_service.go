package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/suipilot/suipilot/internal/models"
)

const intentSystemPrompt = `You are the intent classifier for a Sui wallet assistant.
Classify the user message into exactly one action:
AMBIGUOUS, GET_BALANCE, GET_STAKE_INFO, STAKE_TOKEN, UNSTAKE_TOKEN,
TRANSFER_TOKEN, CREATE_ADDRESS_BOOK, SAVE_CONTACT, LIST_CONTACTS, UNKNOWN.

Respond with a single JSON object:
{"action": "...", "parsed_data": {...}, "confidence": 0.0-1.0, "clarification_question": "..."}

parsed_data fields by action:
- TRANSFER_TOKEN: recipient, amount, token (SUI or USDC), is_contact_name (true when the recipient is a saved name, not a 0x address)
- STAKE_TOKEN / UNSTAKE_TOKEN: amount, token
- GET_BALANCE / GET_STAKE_INFO: token
- SAVE_CONTACT: contact_key, contact_name, contact_address, notes
Use AMBIGUOUS with a clarification_question when required fields are missing.`

// IntentService classifies natural-language messages into structured intents.
type IntentService interface {
	ParseIntent(message, userAddress string) (models.Intent, error)
}

// IntentServiceConfig describes the OpenAI chat-completions endpoint used
// for classification.
type IntentServiceConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type intentService struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewIntentService(cfg IntentServiceConfig) (IntentService, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OpenAI API key")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &intentService{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type chatCompletionRequest struct {
	Model          string                  `json:"model"`
	Messages       []chatCompletionMessage `json:"messages"`
	Temperature    float64                 `json:"temperature"`
	ResponseFormat responseFormat          `json:"response_format"`
}

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// ParseIntent sends the message to the model and decodes the structured
// intent it returns.
func (s *intentService) ParseIntent(message, userAddress string) (models.Intent, error) {
	userContent := message
	if userAddress != "" {
		userContent = fmt.Sprintf("user_address: %s\nmessage: %s", userAddress, message)
	}

	payload, err := json.Marshal(chatCompletionRequest{
		Model: s.model,
		Messages: []chatCompletionMessage{
			{Role: "system", Content: intentSystemPrompt},
			{Role: "user", Content: userContent},
		},
		Temperature:    0,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return models.Intent{}, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequest("POST", s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return models.Intent{}, fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.Intent{}, fmt.Errorf("intent classification request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Intent{}, fmt.Errorf("failed to read completion response: %w", err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return models.Intent{}, fmt.Errorf("failed to decode completion response: %w", err)
	}
	if completion.Error != nil {
		return models.Intent{}, fmt.Errorf("completion API error: %s", completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return models.Intent{}, fmt.Errorf("completion returned no choices")
	}

	var intent models.Intent
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &intent); err != nil {
		return models.Intent{}, fmt.Errorf("failed to decode intent JSON: %w", err)
	}
	if intent.Action == "" {
		intent.Action = models.IntentActionUnknown
	}
	if intent.ParsedData == nil {
		intent.ParsedData = models.ParsedData{}
	}
	return intent, nil
}
