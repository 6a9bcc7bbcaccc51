package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Manifest is the persisted component -> address record of a chain. It is
// the resume point of the next run and the input of downstream tooling.
type Manifest struct {
	Chain       string                   `json:"chain"`
	ChainID     uint64                   `json:"chainId"`
	Product     string                   `json:"product"`
	LastRunID   string                   `json:"lastRunId"`
	UpdatedAt   time.Time                `json:"updatedAt"`
	Components  map[string]ManifestEntry `json:"components"`
	Initialized map[string]InitRecord    `json:"initialized"`
}

// ManifestEntry is one recorded component
type ManifestEntry struct {
	Address  common.Address `json:"address"`
	TxHash   string         `json:"txHash,omitempty"`
	Artifact string         `json:"artifact"`
	Source   string         `json:"source"`
	Variant  string         `json:"variant,omitempty"`
	Salt     string         `json:"salt"`
	// ConstructorArgs is the hex encoded constructor argument blob
	ConstructorArgs string    `json:"constructorArgs,omitempty"`
	Verified        bool      `json:"verified"`
	VerifyURL       string    `json:"verifyUrl,omitempty"`
	RunID           string    `json:"runId"`
	RecordedAt      time.Time `json:"recordedAt"`
}

// Code returns the code identifier of the entry
func (e ManifestEntry) Code() CodeIdentifier {
	return CodeIdentifier{Artifact: e.Artifact, Source: e.Source}
}

// InitRecord marks a completed initialization step
type InitRecord struct {
	Target common.Address `json:"target"`
	// CallHash is the keccak256 of the calldata that was sent
	CallHash common.Hash `json:"callHash"`
	TxHash   string      `json:"txHash,omitempty"`
	RunID    string      `json:"runId"`
	At       time.Time   `json:"at"`
}

// Matches reports whether the record covers a call with this target and
// calldata hash. Records written without a call hash only compare the target.
func (r InitRecord) Matches(target common.Address, callHash common.Hash) bool {
	if r.Target != target {
		return false
	}
	return r.CallHash == (common.Hash{}) || r.CallHash == callHash
}

// NewManifest creates an empty manifest for a chain
func NewManifest(chain string, chainID uint64, product string) *Manifest {
	return &Manifest{
		Chain:       chain,
		ChainID:     chainID,
		Product:     product,
		Components:  make(map[string]ManifestEntry),
		Initialized: make(map[string]InitRecord),
	}
}

// Addresses returns the recorded name to address map
func (m *Manifest) Addresses() map[string]common.Address {
	out := make(map[string]common.Address, len(m.Components))
	for name, entry := range m.Components {
		out[name] = entry.Address
	}
	return out
}

// CompletedInits returns a copy of the completed initialization records
func (m *Manifest) CompletedInits() map[string]InitRecord {
	out := make(map[string]InitRecord, len(m.Initialized))
	for name, rec := range m.Initialized {
		out[name] = rec
	}
	return out
}
