package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/catapult/internal/domain"
)

// Deployer executes one deployment step: reuse or deploy, address recovery
// and the chain's settle delay
type Deployer struct {
	artifacts ArtifactLoader
	encoder   ArgEncoder
	log       *slog.Logger
}

// NewDeployer creates a new deployer
func NewDeployer(artifacts ArtifactLoader, encoder ArgEncoder, log *slog.Logger) *Deployer {
	return &Deployer{
		artifacts: artifacts,
		encoder:   encoder,
		log:       log.With("component", "Deployer"),
	}
}

// Deploy runs a step against the facility. addresses must hold every
// component planned before the step.
func (d *Deployer) Deploy(
	ctx context.Context,
	facility DeploymentFacility,
	chain *domain.ChainConfig,
	step domain.DeploymentStep,
	addresses map[string]common.Address,
) (*domain.DeployedComponent, error) {
	spec := step.Component

	if step.Action == domain.StepAttach {
		d.log.Info("Component already exists", "name", spec.Name, "address", step.Address.Hex())
		return &domain.DeployedComponent{
			Name:      spec.Name,
			Address:   step.Address,
			WasReused: true,
		}, nil
	}

	fail := func(err error) (*domain.DeployedComponent, error) {
		return nil, &domain.DeploymentFailedError{Component: spec.Name, Cause: err}
	}

	resolved, err := ResolveArgs(spec.ConstructorArgs, addresses)
	if err != nil {
		return fail(err)
	}

	artifact, err := d.artifacts.Load(ctx, spec.Code)
	if err != nil {
		return fail(fmt.Errorf("failed to load artifact %s: %w", spec.Code.Location(), err))
	}
	if len(artifact.Bytecode) == 0 {
		return fail(fmt.Errorf("artifact %s has no creation bytecode", spec.Code.Location()))
	}

	var encodedArgs []byte
	if len(resolved) > 0 {
		encodedArgs, err = d.encoder.EncodeArgs(resolved)
		if err != nil {
			return fail(fmt.Errorf("failed to encode constructor args: %w", err))
		}
	}

	payload := make([]byte, 0, len(artifact.Bytecode)+len(encodedArgs))
	payload = append(payload, artifact.Bytecode...)
	payload = append(payload, encodedArgs...)

	salt, err := domain.EncodeSalt(spec.Salt)
	if err != nil {
		return fail(err)
	}

	d.log.Info("Deploying component",
		"name", spec.Name,
		"artifact", spec.Code.Artifact,
		"salt", spec.Salt,
		"payload_bytes", len(payload),
	)

	receipt, err := facility.Deploy(ctx, salt, payload)
	if err != nil {
		return fail(err)
	}
	if receipt.Address == (common.Address{}) {
		return fail(fmt.Errorf("facility returned no address for tx %s", receipt.TxHash.Hex()))
	}

	deployed := &domain.DeployedComponent{
		Name:            spec.Name,
		Address:         receipt.Address,
		ConstructorArgs: encodedArgs,
	}

	if receipt.Existing {
		// Mined by an earlier run that never recorded it; nothing to wait for
		d.log.Info("Recovered component at its deterministic address", "name", spec.Name, "address", receipt.Address.Hex())
		return deployed, ctx.Err()
	}

	deployed.DeployTxRef = receipt.TxHash.Hex()
	d.log.Info("Deployed component",
		"name", spec.Name,
		"address", receipt.Address.Hex(),
		"tx", deployed.DeployTxRef,
		"gas_used", receipt.GasUsed,
	)

	// On cancellation the contract exists; the caller records it before handling the error
	return deployed, sleepContext(ctx, chain.SettleDelay)
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
