package domain

import "github.com/ethereum/go-ethereum/common"

// VerificationProtocol selects how sources are registered with an explorer
type VerificationProtocol string

const (
	// ProtocolCompileAndMatch submits the source location and lets the explorer
	// recompile and compare (etherscan-compatible explorers)
	ProtocolCompileAndMatch VerificationProtocol = "compile-and-match"
	// ProtocolSourceMap pushes the compiler metadata and sources (sourcify)
	ProtocolSourceMap VerificationProtocol = "source-map"
)

// Valid reports whether the protocol is known
func (p VerificationProtocol) Valid() bool {
	return p == ProtocolCompileAndMatch || p == ProtocolSourceMap
}

// VerificationRequest is everything a verifier needs for one component
type VerificationRequest struct {
	Component       string
	Address         common.Address
	Code            CodeIdentifier
	ConstructorArgs []byte
	ChainID         uint64
	Profile         ChainProfile
}

// VerifyResult is the outcome of verifying one component
type VerifyResult struct {
	Component string               `json:"component" yaml:"component"`
	Address   common.Address       `json:"address" yaml:"address"`
	Protocol  VerificationProtocol `json:"protocol" yaml:"protocol"`
	Verified  bool                 `json:"verified" yaml:"verified"`
	Attempts  int                  `json:"attempts" yaml:"attempts"`
	URL       string               `json:"url,omitempty" yaml:"url,omitempty"`
	Reason    string               `json:"reason,omitempty" yaml:"reason,omitempty"`
	Err       error                `json:"-" yaml:"-"`
}
