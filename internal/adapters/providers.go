package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/catapult/internal/adapters/abi"
	"github.com/trebuchet-org/catapult/internal/adapters/artifacts"
	"github.com/trebuchet-org/catapult/internal/adapters/blockchain"
	"github.com/trebuchet-org/catapult/internal/adapters/catalog"
	"github.com/trebuchet-org/catapult/internal/adapters/interactive"
	"github.com/trebuchet-org/catapult/internal/adapters/metrics"
	"github.com/trebuchet-org/catapult/internal/adapters/progress"
	"github.com/trebuchet-org/catapult/internal/adapters/repository/manifests"
	"github.com/trebuchet-org/catapult/internal/adapters/verification"
	"github.com/trebuchet-org/catapult/internal/config"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// ConfigSet provides chain configuration and product catalogs
var ConfigSet = wire.NewSet(
	config.NewResolver,
	wire.Bind(new(usecase.ConfigResolver), new(*config.Resolver)),

	catalog.NewLoader,
	wire.Bind(new(usecase.CatalogLoader), new(*catalog.Loader)),
)

// BuildSet provides artifact loading and ABI encoding
var BuildSet = wire.NewSet(
	artifacts.NewLoader,
	wire.Bind(new(usecase.ArtifactLoader), new(*artifacts.Loader)),

	abi.NewEncoder,
	wire.Bind(new(usecase.ArgEncoder), new(*abi.Encoder)),
)

// BlockchainSet provides chain sessions
var BlockchainSet = wire.NewSet(
	blockchain.NewConnector,
	wire.Bind(new(usecase.ChainConnector), new(*blockchain.Connector)),
)

// VerificationSet provides one verifier per protocol
var VerificationSet = wire.NewSet(
	verification.NewForgeVerifier,
	verification.NewSourcifyVerifier,
	verification.NewVerifiers,
)

// RepositorySet provides manifest persistence
var RepositorySet = wire.NewSet(
	manifests.NewFileRepository,
	wire.Bind(new(usecase.ManifestStore), new(*manifests.FileRepository)),
)

// InteractiveSet provides terminal interaction and progress output
var InteractiveSet = wire.NewSet(
	interactive.NewPrompter,
	wire.Bind(new(usecase.Confirmer), new(*interactive.Prompter)),

	progress.NewProgressSink,
)

// MetricsSet provides run metrics
var MetricsSet = wire.NewSet(
	metrics.NewRecorder,
	wire.Bind(new(usecase.MetricsRecorder), new(*metrics.Recorder)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	ConfigSet,
	BuildSet,
	BlockchainSet,
	VerificationSet,
	RepositorySet,
	InteractiveSet,
	MetricsSet,
)
