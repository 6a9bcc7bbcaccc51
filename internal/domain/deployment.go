package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ComponentStatus is the outcome of a component in a run
type ComponentStatus string

const (
	StatusDeployed ComponentStatus = "deployed"
	StatusReused   ComponentStatus = "reused"
	StatusFailed   ComponentStatus = "failed"
	StatusSkipped  ComponentStatus = "skipped"
)

// HasAddress reports whether a component with this status can be referenced
func (s ComponentStatus) HasAddress() bool {
	return s == StatusDeployed || s == StatusReused
}

// DeployedComponent is created once per component per run by the deployer
type DeployedComponent struct {
	Name      string         `json:"name"`
	Address   common.Address `json:"address"`
	WasReused bool           `json:"wasReused"`
	// DeployTxRef is empty when the component was reused
	DeployTxRef string `json:"deployTxRef,omitempty"`
	// ConstructorArgs is the ABI encoded constructor argument blob
	ConstructorArgs []byte `json:"-"`
}

// ComponentResult is the final record of one planned component
type ComponentResult struct {
	Name     string             `json:"name"`
	Status   ComponentStatus    `json:"status"`
	Deployed *DeployedComponent `json:"deployed,omitempty"`
	Code     CodeIdentifier     `json:"code"`
	Variant  string             `json:"variant,omitempty"`
	Salt     string             `json:"salt"`
	// Reason explains a failed or skipped status
	Reason string `json:"reason,omitempty"`
	// SkippedBecause lists the failed or skipped dependencies
	SkippedBecause []string      `json:"skippedBecause,omitempty"`
	Verification   *VerifyResult `json:"verification,omitempty"`
	Duration       time.Duration `json:"duration"`
	Err            error         `json:"-"`
}

// Verified reports whether verification succeeded for the component
func (c ComponentResult) Verified() bool {
	return c.Verification != nil && c.Verification.Verified
}
