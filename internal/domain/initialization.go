package domain

import "github.com/ethereum/go-ethereum/common"

// InitializationStep is a post-deploy call wiring addresses and static values
// into an already deployed component
type InitializationStep struct {
	Name      string
	Target    string
	Signature string
	Args      []Arg
	// After lists steps whose effects this step depends on
	After []string
	Index int
}

// References returns every component referenced by the call arguments
func (s InitializationStep) References() []string {
	var refs []string
	for _, arg := range s.Args {
		refs = append(refs, arg.References()...)
	}
	return refs
}

// InitStatus is the outcome of an initialization step
type InitStatus string

const (
	InitSucceeded   InitStatus = "succeeded"
	InitFailed      InitStatus = "failed"
	InitSkipped     InitStatus = "skipped"
	InitAlreadyDone InitStatus = "already-done"
)

// Done reports whether the effects of the step are in place
func (s InitStatus) Done() bool {
	return s == InitSucceeded || s == InitAlreadyDone
}

// InitResult records what happened to one initialization step
type InitResult struct {
	Step   string     `json:"step" yaml:"step"`
	Target string     `json:"target" yaml:"target"`
	Status InitStatus `json:"status" yaml:"status"`
	TxRef  string     `json:"txRef,omitempty" yaml:"txRef,omitempty"`
	Reason string     `json:"reason,omitempty" yaml:"reason,omitempty"`
	// CallHash is the keccak256 of the calldata, set once the call is encoded
	CallHash common.Hash `json:"-" yaml:"-"`
	Err      error       `json:"-" yaml:"-"`
}
