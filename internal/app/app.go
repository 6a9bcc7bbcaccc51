package app

import (
	"log/slog"

	"github.com/trebuchet-org/catapult/internal/adapters/interactive"
	"github.com/trebuchet-org/catapult/internal/config"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Shared dependencies
	Prompter *interactive.Prompter

	// Use cases
	PlanDeployment   *usecase.PlanDeployment
	RunDeployment    *usecase.RunDeployment
	VerifyComponents *usecase.VerifyComponents
	ShowManifest     *usecase.ShowManifest
	ListChains       *usecase.ListChains
	ShowCatalog      *usecase.ShowCatalog
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	prompter *interactive.Prompter,
	planDeployment *usecase.PlanDeployment,
	runDeployment *usecase.RunDeployment,
	verifyComponents *usecase.VerifyComponents,
	showManifest *usecase.ShowManifest,
	listChains *usecase.ListChains,
	showCatalog *usecase.ShowCatalog,
) (*App, error) {
	return &App{
		Config:           cfg,
		Log:              log,
		Prompter:         prompter,
		PlanDeployment:   planDeployment,
		RunDeployment:    runDeployment,
		VerifyComponents: verifyComponents,
		ShowManifest:     showManifest,
		ListChains:       listChains,
		ShowCatalog:      showCatalog,
	}, nil
}
