package models

type IntentAction string

const (
	IntentActionAmbiguous         IntentAction = "AMBIGUOUS"
	IntentActionGetBalance        IntentAction = "GET_BALANCE"
	IntentActionGetStakeInfo      IntentAction = "GET_STAKE_INFO"
	IntentActionStakeToken        IntentAction = "STAKE_TOKEN"
	IntentActionUnstakeToken      IntentAction = "UNSTAKE_TOKEN"
	IntentActionTransferToken     IntentAction = "TRANSFER_TOKEN"
	IntentActionCreateAddressBook IntentAction = "CREATE_ADDRESS_BOOK"
	IntentActionSaveContact       IntentAction = "SAVE_CONTACT"
	IntentActionListContacts      IntentAction = "LIST_CONTACTS"
	IntentActionUnknown           IntentAction = "UNKNOWN"
)

// ParsedData carries the action-specific fields extracted by the classifier.
// The shape depends on the action (e.g. recipient/amount/token for transfers).
type ParsedData map[string]any

// String returns the value for key as a string, or "" when absent or not a string.
func (p ParsedData) String(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// StringOr returns the value for key as a string, falling back to def.
func (p ParsedData) StringOr(key, def string) string {
	if v := p.String(key); v != "" {
		return v
	}
	return def
}

// Bool returns the value for key as a bool. Classifiers occasionally emit
// booleans as strings, so "true" is accepted too.
func (p ParsedData) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

// Intent is the structured classification of a natural-language instruction.
// It is produced once per request by the classifier and never mutated after.
type Intent struct {
	Action                IntentAction `json:"action"`
	ParsedData            ParsedData   `json:"parsed_data"`
	Confidence            float64      `json:"confidence"`
	ClarificationQuestion string       `json:"clarification_question,omitempty"`
}
