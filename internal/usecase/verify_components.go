package usecase

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/trebuchet-org/catapult/internal/domain"
)

// VerifyComponentsParams selects recorded components to verify
type VerifyComponentsParams struct {
	Chain string
	// Names limits verification to these components; empty means every
	// unverified one
	Names []string
	// Force re-submits components already marked verified
	Force   bool
	Options VerifyOptions
}

// VerifyComponentsResult contains the result of a verification batch
type VerifyComponentsResult struct {
	Chain   string
	Results []domain.VerifyResult
	Skipped map[string]string
}

// VerifyComponents verifies components from a chain's manifest after the fact
type VerifyComponents struct {
	resolver  ConfigResolver
	manifests ManifestStore
	verifier  *VerificationService
	log       *slog.Logger
}

// NewVerifyComponents creates a new VerifyComponents use case
func NewVerifyComponents(
	resolver ConfigResolver,
	manifests ManifestStore,
	verifier *VerificationService,
	log *slog.Logger,
) *VerifyComponents {
	return &VerifyComponents{
		resolver:  resolver,
		manifests: manifests,
		verifier:  verifier,
		log:       log.With("component", "VerifyComponents"),
	}
}

// Candidates returns the manifest component names eligible for verification
func (u *VerifyComponents) Candidates(ctx context.Context, chain string, force bool) ([]string, error) {
	manifest, err := u.manifests.Load(ctx, chain)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, name := range domain.SortedKeys(manifest.Components) {
		if force || !manifest.Components[name].Verified {
			names = append(names, name)
		}
	}
	return names, nil
}

// Run verifies the selected components and records successes in the manifest
func (u *VerifyComponents) Run(ctx context.Context, params VerifyComponentsParams) (*VerifyComponentsResult, error) {
	cfg, err := u.resolver.Resolve(params.Chain)
	if err != nil {
		return nil, err
	}
	manifest, err := u.manifests.Load(ctx, cfg.Name)
	if err != nil {
		return nil, err
	}

	names := params.Names
	if len(names) == 0 {
		names = domain.SortedKeys(manifest.Components)
	}

	result := &VerifyComponentsResult{Chain: cfg.Name, Skipped: make(map[string]string)}
	var reqs []domain.VerificationRequest
	for _, name := range names {
		entry, ok := manifest.Components[name]
		if !ok {
			return nil, &domain.UnknownComponentError{
				Name:         name,
				ReferencedBy: "verify",
				Suggestions:  suggest(name, domain.SortedKeys(manifest.Components)),
			}
		}
		if entry.Verified && !params.Force {
			result.Skipped[name] = "already verified"
			continue
		}
		args, err := decodeHex(entry.ConstructorArgs)
		if err != nil {
			return nil, fmt.Errorf("%w: constructor args of %s: %v", domain.ErrInvalidConfig, name, err)
		}
		reqs = append(reqs, domain.VerificationRequest{
			Component:       name,
			Address:         entry.Address,
			Code:            entry.Code(),
			ConstructorArgs: args,
			ChainID:         cfg.ChainID,
			Profile:         cfg.Profile,
		})
	}

	if len(reqs) == 0 {
		return result, nil
	}

	u.log.Info("Verifying recorded components", "chain", cfg.Name, "count", len(reqs))
	result.Results = u.verifier.VerifyAll(ctx, reqs, params.Options)

	changed := false
	for _, vr := range result.Results {
		if !vr.Verified {
			continue
		}
		entry := manifest.Components[vr.Component]
		entry.Verified = true
		entry.VerifyURL = vr.URL
		manifest.Components[vr.Component] = entry
		changed = true
	}
	if changed {
		if err := u.manifests.Save(ctx, manifest); err != nil {
			return result, fmt.Errorf("failed to save manifest: %w", err)
		}
	}

	return result, nil
}

func decodeHex(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}
