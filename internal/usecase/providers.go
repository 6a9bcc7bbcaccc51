package usecase

import "github.com/google/wire"

// UseCaseSet provides the deployment building blocks and every use case
var UseCaseSet = wire.NewSet(
	NewPlanner,
	NewDeployer,
	NewInitializer,
	NewVerificationService,
	NewReporter,

	NewPlanDeployment,
	NewRunDeployment,
	NewVerifyComponents,
	NewShowManifest,
	NewListChains,
	NewShowCatalog,
)
