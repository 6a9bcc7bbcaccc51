package config

import "time"

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string
	// ConfigFile is the chain configuration, catapult.toml by default
	ConfigFile string
	// CatalogFile replaces the embedded product catalogs when set
	CatalogFile string
	// ArtifactsDir overrides the build output directory
	ArtifactsDir string

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool // Output in JSON format
	Timeout        time.Duration
}

// ProjectFile is the raw catapult.toml structure
type ProjectFile struct {
	Common   CommonSection             `toml:"common"`
	Profiles map[string]ProfileSection `toml:"profiles" validate:"dive"`
	Chains   map[string]ChainSection   `toml:"chains" validate:"dive"`
}

// CommonSection holds the defaults every chain inherits
type CommonSection struct {
	Salt           string         `toml:"salt"`
	Admin          string         `toml:"admin" validate:"omitempty,eth_addr"`
	DeployerKey    string         `toml:"deployer_key"`
	SettleDelay    string         `toml:"settle_delay"`
	ConfirmTimeout string         `toml:"confirm_timeout"`
	Values         map[string]any `toml:"values"`
}

// ProfileSection describes a family of chains sharing admin and explorer
type ProfileSection struct {
	Admin        string `toml:"admin" validate:"omitempty,eth_addr"`
	Verification string `toml:"verification" validate:"required,oneof=compile-and-match source-map"`
	ExplorerURL  string `toml:"explorer_url" validate:"omitempty,url"`
	VerifierURL  string `toml:"verifier_url" validate:"omitempty,url"`
	APIKey       string `toml:"api_key"`
}

// ChainSection is one target chain
type ChainSection struct {
	ChainID        uint64                      `toml:"chain_id" validate:"required,gt=0"`
	RPCURL         string                      `toml:"rpc_url" validate:"omitempty,url"`
	Product        string                      `toml:"product" validate:"required"`
	Profile        string                      `toml:"profile" validate:"required"`
	Salt           string                      `toml:"salt"`
	DeployerKey    string                      `toml:"deployer_key"`
	SettleDelay    string                      `toml:"settle_delay"`
	ConfirmTimeout string                      `toml:"confirm_timeout"`
	Components     map[string]ComponentSection `toml:"components"`
	Values         map[string]any              `toml:"values"`
}

// ComponentSection holds the per-chain switches of one component
type ComponentSection struct {
	Enabled    bool   `toml:"enabled"`
	AutoVerify bool   `toml:"auto_verify"`
	Variant    string `toml:"variant"`
	SaltSuffix string `toml:"salt_suffix"`
}
