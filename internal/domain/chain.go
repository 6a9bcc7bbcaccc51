package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ChainProfile carries the chain-specific capabilities selected once during
// config resolution: who administers the components and how sources are verified
type ChainProfile struct {
	Name         string
	Admin        common.Address
	Verification VerificationProtocol
	// ExplorerURL is the human facing explorer base URL
	ExplorerURL string
	// VerifierURL is the verification API endpoint, if it differs from the default
	VerifierURL string
	APIKey      string
}

// ComponentFlags are the per-chain switches of one component
type ComponentFlags struct {
	Enabled    bool
	AutoVerify bool
	Variant    string
	SaltSuffix string
}

// ChainConfig is the fully merged configuration of one target chain
type ChainConfig struct {
	Name           string
	ChainID        uint64
	RPCURL         string
	Product        string
	Profile        ChainProfile
	Salt           string
	SettleDelay    time.Duration
	ConfirmTimeout time.Duration
	// DeployerKey is the hex private key used to sign transactions
	DeployerKey string
	Components  map[string]ComponentFlags
	// Values holds the merged static values (common overridden by chain)
	Values map[string]any
}

// Flags returns the switches of a component, zero when not configured
func (c *ChainConfig) Flags(name string) ComponentFlags {
	if c.Components == nil {
		return ComponentFlags{}
	}
	return c.Components[name]
}

// Enabled reports whether a component is enabled on the chain
func (c *ChainConfig) Enabled(name string) bool {
	return c.Flags(name).Enabled
}

// Value looks up a static configuration value
func (c *ChainConfig) Value(key string) (any, bool) {
	if c.Values == nil {
		return nil, false
	}
	v, ok := c.Values[key]
	return v, ok
}
