package usecase

import (
	"context"

	"github.com/trebuchet-org/catapult/internal/domain"
)

// ChainStatus is a configured chain or the error resolving it
type ChainStatus struct {
	Summary domain.ChainSummary
	Error   error
}

// ListChains lists configured chains with their resolved profile
type ListChains struct {
	resolver ConfigResolver
}

// NewListChains creates a new ListChains use case
func NewListChains(resolver ConfigResolver) *ListChains {
	return &ListChains{resolver: resolver}
}

// Run executes the use case
func (uc *ListChains) Run(ctx context.Context) ([]ChainStatus, error) {
	names := uc.resolver.Chains()
	chains := make([]ChainStatus, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		status := ChainStatus{Summary: domain.ChainSummary{Name: name}}
		cfg, err := uc.resolver.Resolve(name)
		if err != nil {
			status.Error = err
			chains = append(chains, status)
			continue
		}
		status.Summary = domain.ChainSummary{
			Name:         cfg.Name,
			ChainID:      cfg.ChainID,
			Product:      cfg.Product,
			Profile:      cfg.Profile.Name,
			Verification: cfg.Profile.Verification,
			Admin:        cfg.Profile.Admin,
		}
		for _, component := range domain.SortedKeys(cfg.Components) {
			if cfg.Components[component].Enabled {
				status.Summary.Enabled = append(status.Summary.Enabled, component)
			}
		}
		chains = append(chains, status)
	}
	return chains, nil
}
