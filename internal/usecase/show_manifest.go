package usecase

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/catapult/internal/domain"
)

// ShowManifest loads the recorded deployments of one or all chains
type ShowManifest struct {
	manifests ManifestStore
}

// NewShowManifest creates a new ShowManifest use case
func NewShowManifest(manifests ManifestStore) *ShowManifest {
	return &ShowManifest{manifests: manifests}
}

// ShowManifestResult holds the loaded manifests in chain name order
type ShowManifestResult struct {
	Manifests []*domain.Manifest
}

// Run loads the manifest of chain, or of every recorded chain when chain is empty
func (u *ShowManifest) Run(ctx context.Context, chain string) (*ShowManifestResult, error) {
	chains := []string{chain}
	if chain == "" {
		var err error
		chains, err = u.manifests.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list manifests: %w", err)
		}
	}

	result := &ShowManifestResult{}
	for _, name := range chains {
		m, err := u.manifests.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		result.Manifests = append(result.Manifests, m)
	}
	return result, nil
}
