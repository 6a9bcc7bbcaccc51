package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// RunResult is the final outcome of a deployment run
type RunResult struct {
	RunID      string    `json:"runId"`
	Chain      string    `json:"chain"`
	ChainID    uint64    `json:"chainId"`
	Product    string    `json:"product"`
	DryRun     bool      `json:"dryRun"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	// Components are in plan order
	Components      []ComponentResult `json:"components"`
	Initializations []InitResult      `json:"initializations"`
	// Cancelled is set when the run stopped before completing every step
	Cancelled bool `json:"cancelled,omitempty"`
}

// Component returns the result of a component by name
func (r *RunResult) Component(name string) (*ComponentResult, bool) {
	for i := range r.Components {
		if r.Components[i].Name == name {
			return &r.Components[i], true
		}
	}
	return nil, false
}

// Addresses returns the name to address map of every deployed or reused
// component, suitable as the already-deployed input of a later run
func (r *RunResult) Addresses() map[string]common.Address {
	out := make(map[string]common.Address)
	for _, c := range r.Components {
		if c.Status.HasAddress() && c.Deployed != nil {
			out[c.Name] = c.Deployed.Address
		}
	}
	return out
}

// RunSummary aggregates a RunResult for reporting
type RunSummary struct {
	RunID     string            `json:"runId" yaml:"runId"`
	Chain     string            `json:"chain" yaml:"chain"`
	ChainID   uint64            `json:"chainId" yaml:"chainId"`
	Product   string            `json:"product" yaml:"product"`
	DryRun    bool              `json:"dryRun" yaml:"dryRun"`
	Duration  time.Duration     `json:"duration" yaml:"duration"`
	Deployed  []string          `json:"deployed" yaml:"deployed"`
	Reused    []string          `json:"reused" yaml:"reused"`
	Failed    []string          `json:"failed" yaml:"failed"`
	Skipped   []string          `json:"skipped" yaml:"skipped"`
	Addresses map[string]string `json:"addresses" yaml:"addresses"`

	InitSucceeded   int `json:"initSucceeded" yaml:"initSucceeded"`
	InitFailed      int `json:"initFailed" yaml:"initFailed"`
	InitSkipped     int `json:"initSkipped" yaml:"initSkipped"`
	InitAlreadyDone int `json:"initAlreadyDone" yaml:"initAlreadyDone"`

	VerifyAttempts  int      `json:"verifyAttempts" yaml:"verifyAttempts"`
	VerifySucceeded int      `json:"verifySucceeded" yaml:"verifySucceeded"`
	Unverified      []string `json:"unverified" yaml:"unverified"`
	Cancelled       bool     `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
}

// Success reports whether every planned component ended with an address and
// no initialization failed
func (s *RunSummary) Success() bool {
	return len(s.Failed) == 0 && len(s.Skipped) == 0 && s.InitFailed == 0 && s.InitSkipped == 0 && !s.Cancelled
}
