package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/catapult/internal/domain"
)

// PlanParams selects the chain and the already-deployed set of a plan
type PlanParams struct {
	Chain string
	// Reuse overrides manifest addresses component by component
	Reuse map[string]common.Address
	// Fresh ignores the chain's manifest
	Fresh bool
}

// PlanResult is a plan plus the inputs it was derived from
type PlanResult struct {
	Config   *domain.ChainConfig
	Catalog  *domain.Catalog
	Plan     *domain.DeploymentPlan
	Manifest *domain.Manifest
}

// PlanDeployment resolves configuration and produces a deployment plan
// without touching the chain
type PlanDeployment struct {
	resolver  ConfigResolver
	catalogs  CatalogLoader
	manifests ManifestStore
	planner   *Planner
	log       *slog.Logger
}

// NewPlanDeployment creates a new PlanDeployment use case
func NewPlanDeployment(
	resolver ConfigResolver,
	catalogs CatalogLoader,
	manifests ManifestStore,
	planner *Planner,
	log *slog.Logger,
) *PlanDeployment {
	return &PlanDeployment{
		resolver:  resolver,
		catalogs:  catalogs,
		manifests: manifests,
		planner:   planner,
		log:       log.With("component", "PlanDeployment"),
	}
}

// Run builds the plan for a chain
func (u *PlanDeployment) Run(ctx context.Context, params PlanParams) (*PlanResult, error) {
	cfg, err := u.resolver.Resolve(params.Chain)
	if err != nil {
		return nil, err
	}

	catalog, err := u.catalogs.Load(cfg.Product)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", cfg.Product, err)
	}

	manifest, err := u.manifests.Load(ctx, cfg.Name)
	switch {
	case errors.Is(err, domain.ErrManifestNotFound):
		manifest = domain.NewManifest(cfg.Name, cfg.ChainID, catalog.Product)
	case err != nil:
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	case manifest.ChainID != 0 && manifest.ChainID != cfg.ChainID:
		return nil, fmt.Errorf("%w: manifest for %s was recorded on chain %d, config says %d",
			domain.ErrInvalidConfig, cfg.Name, manifest.ChainID, cfg.ChainID)
	}

	already := make(map[string]common.Address)
	if !params.Fresh {
		for name, addr := range manifest.Addresses() {
			if _, ok := catalog.Component(name); ok {
				already[name] = addr
			} else {
				u.log.Warn("Ignoring recorded component missing from catalog", "name", name, "product", catalog.Product)
			}
		}
	}
	for name, addr := range params.Reuse {
		already[name] = addr
	}

	plan, err := u.planner.Plan(cfg, catalog, already)
	if err != nil {
		return nil, err
	}

	return &PlanResult{
		Config:   cfg,
		Catalog:  catalog,
		Plan:     plan,
		Manifest: manifest,
	}, nil
}
