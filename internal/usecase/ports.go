package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/catapult/internal/domain"
)

// ConfigResolver resolves the merged configuration of a chain
type ConfigResolver interface {
	Resolve(chain string) (*domain.ChainConfig, error)
	Chains() []string
}

// CatalogLoader loads product catalogs
type CatalogLoader interface {
	Load(product string) (*domain.Catalog, error)
	Products() []string
}

// Artifact is the compiled form of a component
type Artifact struct {
	Name            string
	Source          string
	Bytecode        []byte
	Metadata        string
	CompilerVersion string
}

// ArtifactLoader reads build artifacts for a code identifier
type ArtifactLoader interface {
	Load(ctx context.Context, code domain.CodeIdentifier) (*Artifact, error)
}

// ArgEncoder encodes resolved arguments with the chain's ABI encoding
type ArgEncoder interface {
	EncodeArgs(args []domain.ResolvedArg) ([]byte, error)
	EncodeCall(signature string, args []domain.ResolvedArg) ([]byte, error)
}

// FacilityReceipt is the confirmed outcome of a deployment through the facility
type FacilityReceipt struct {
	Address common.Address
	TxHash  common.Hash
	GasUsed uint64
	// Existing is set when the code was already at the address and no
	// transaction was sent
	Existing bool
}

// DeploymentFacility deploys a payload at an address derived from the salt
type DeploymentFacility interface {
	Deploy(ctx context.Context, salt [32]byte, payload []byte) (*FacilityReceipt, error)
}

// ContractCaller sends a state-changing call and waits for its inclusion
type ContractCaller interface {
	Transact(ctx context.Context, to common.Address, data []byte) (common.Hash, error)
}

// ChainSession is a connection to one chain, bound to one signing account
type ChainSession interface {
	DeploymentFacility
	ContractCaller
	Sender() common.Address
	Close()
}

// ChainConnector opens chain sessions
type ChainConnector interface {
	Connect(ctx context.Context, chain *domain.ChainConfig, dryRun bool) (ChainSession, error)
}

// ContractVerifier submits source verification with one protocol
type ContractVerifier interface {
	Protocol() domain.VerificationProtocol
	Verify(ctx context.Context, req domain.VerificationRequest) (url string, err error)
}

// ManifestStore persists run manifests
type ManifestStore interface {
	Load(ctx context.Context, chain string) (*domain.Manifest, error)
	Save(ctx context.Context, manifest *domain.Manifest) error
	List(ctx context.Context) ([]string, error)
}

// MetricsRecorder records run outcomes
type MetricsRecorder interface {
	RecordRun(result *domain.RunResult)
	Flush(path string) error
}

// Confirmer asks the user to approve an action
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// Progress stages
const (
	StagePlan       = "plan"
	StageDeploy     = "deploy"
	StageInitialize = "initialize"
	StageVerify     = "verify"
	StageDone       = "done"
)
