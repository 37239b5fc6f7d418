package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config contains all configuration parameters for the service. Values are
// read from the environment (a .env file is loaded first when present).
type Config struct {
	Port         int    `envconfig:"PORT" default:"8080"`
	DatabasePath string `envconfig:"DATABASE_PATH" default:"data/suipilot.db"`
	// DatabaseURL switches the vault store to Postgres when set.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	SuiRPCURL string `envconfig:"SUI_RPC_URL" default:"https://fullnode.testnet.sui.io:443"`
	// StakingValidator is the validator address used for stake requests.
	StakingValidator string `envconfig:"SUI_STAKING_VALIDATOR"`
	// AddressBookPackage is the published Move package holding the
	// address_book module.
	AddressBookPackage string `envconfig:"SUI_ADDRESS_BOOK_PACKAGE"`

	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY" required:"true"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`

	WalrusPublisherURL  string `envconfig:"WALRUS_PUBLISHER_URL" default:"https://publisher.walrus-testnet.walrus.space"`
	WalrusAggregatorURL string `envconfig:"WALRUS_AGGREGATOR_URL" default:"https://aggregator.walrus-testnet.walrus.space"`
	// WalrusEpochs is how many storage epochs uploaded blobs are kept for.
	WalrusEpochs int `envconfig:"WALRUS_EPOCHS" default:"5"`

	// SealMasterKey seeds the per-user contact encryption keys.
	SealMasterKey string `envconfig:"SEAL_MASTER_KEY" required:"true"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return cfg, nil
}
