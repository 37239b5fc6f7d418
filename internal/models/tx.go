package models

type TransactionAction string

const (
	TransactionActionCreateAddressBook TransactionAction = "create_address_book"
	TransactionActionSaveContact       TransactionAction = "save_contact"
	TransactionActionStakeToken        TransactionAction = "stake_token"
	TransactionActionUnstakeToken      TransactionAction = "unstake_token"
	TransactionActionTransferToken     TransactionAction = "transfer_token"
)

// MoveCallMetadata describes a Move call for the client wallet to assemble
// and sign (package::module::function target plus arguments).
type MoveCallMetadata struct {
	TransactionType string   `json:"transaction_type"`
	Target          string   `json:"target"`
	Arguments       []any    `json:"arguments"`
	TypeArguments   []string `json:"type_arguments"`
}

// TransactionData is the payload handed back by the chat endpoint and later
// submitted to the execute endpoint. It is discriminated by Action; only the
// fields belonging to that action are populated. Payloads are built through
// the constructors below rather than assembled ad hoc.
type TransactionData struct {
	Action TransactionAction `json:"action"`

	// Monetary actions (stake, unstake, transfer). Amount is in smallest
	// units of the token.
	Amount    string    `json:"amount,omitempty"`
	Token     TokenType `json:"token,omitempty"`
	Recipient string    `json:"recipient,omitempty"`

	// Move-call actions (create_address_book, save_contact).
	TransactionType string   `json:"transaction_type,omitempty"`
	Target          string   `json:"target,omitempty"`
	Arguments       []any    `json:"arguments,omitempty"`
	TypeArguments   []string `json:"type_arguments,omitempty"`
	ContactKey      string   `json:"contact_key,omitempty"`
	ContactName     string   `json:"contact_name,omitempty"`

	// PrivateKey selects the server-signed execution path when present.
	// It is only ever read by the execute endpoint, never produced.
	PrivateKey string `json:"private_key,omitempty"`
}

func NewStakePayload(amount string, token TokenType) *TransactionData {
	return &TransactionData{Action: TransactionActionStakeToken, Amount: amount, Token: token}
}

func NewUnstakePayload(amount string, token TokenType) *TransactionData {
	return &TransactionData{Action: TransactionActionUnstakeToken, Amount: amount, Token: token}
}

func NewTransferPayload(recipient, amount string, token TokenType) *TransactionData {
	return &TransactionData{
		Action:    TransactionActionTransferToken,
		Recipient: recipient,
		Amount:    amount,
		Token:     token,
	}
}

func NewCreateAddressBookPayload(call MoveCallMetadata) *TransactionData {
	return &TransactionData{
		Action:          TransactionActionCreateAddressBook,
		TransactionType: call.TransactionType,
		Target:          call.Target,
		Arguments:       call.Arguments,
		TypeArguments:   call.TypeArguments,
	}
}

func NewSaveContactPayload(call MoveCallMetadata, contactKey, contactName string) *TransactionData {
	return &TransactionData{
		Action:          TransactionActionSaveContact,
		TransactionType: call.TransactionType,
		Target:          call.Target,
		Arguments:       call.Arguments,
		TypeArguments:   call.TypeArguments,
		ContactKey:      contactKey,
		ContactName:     contactName,
	}
}

// TransactionResult reports the outcome of an execute request. When signing
// is deferred to the client, Success reflects successful construction of the
// transaction bytes, not on-chain finality.
type TransactionResult struct {
	Success           bool           `json:"success"`
	TransactionDigest string         `json:"transaction_digest,omitempty"`
	Effects           map[string]any `json:"effects,omitempty"`
	Error             string         `json:"error,omitempty"`
}

type ExecuteTransactionRequest struct {
	UserAddress     string           `json:"user_address"`
	TransactionData *TransactionData `json:"transaction_data"`
}
