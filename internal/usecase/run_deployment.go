package usecase

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/trebuchet-org/catapult/internal/domain"
)

// RunParams configures a deployment run
type RunParams struct {
	PlanParams
	DryRun bool
	// SkipConfirm broadcasts without asking
	SkipConfirm  bool
	SkipVerify   bool
	VerifyReused bool
	Verify       VerifyOptions
	// MetricsFile, when set, receives the run metrics in text exposition format
	MetricsFile string
}

// RunOutput is the result of a run together with its summary
type RunOutput struct {
	Plan    *domain.DeploymentPlan
	Result  *domain.RunResult
	Summary *domain.RunSummary
}

// RunDeployment drives a whole run: plan, sequential deploys, initialization,
// concurrent verification, report and manifest persistence
type RunDeployment struct {
	planning    *PlanDeployment
	connector   ChainConnector
	deployer    *Deployer
	initializer *Initializer
	verifier    *VerificationService
	reporter    *Reporter
	manifests   ManifestStore
	metrics     MetricsRecorder
	confirmer   Confirmer
	progress    ProgressSink
	log         *slog.Logger
}

// NewRunDeployment creates a new RunDeployment use case
func NewRunDeployment(
	planning *PlanDeployment,
	connector ChainConnector,
	deployer *Deployer,
	initializer *Initializer,
	verifier *VerificationService,
	reporter *Reporter,
	manifests ManifestStore,
	metrics MetricsRecorder,
	confirmer Confirmer,
	progress ProgressSink,
	log *slog.Logger,
) *RunDeployment {
	return &RunDeployment{
		planning:    planning,
		connector:   connector,
		deployer:    deployer,
		initializer: initializer,
		verifier:    verifier,
		reporter:    reporter,
		manifests:   manifests,
		metrics:     metrics,
		confirmer:   confirmer,
		progress:    progress,
		log:         log,
	}
}

// Run executes the deployment. Configuration and planning errors abort the
// run with no result. Component level failures are collected in the result;
// the returned error is only set when the run was cancelled or the manifest
// could not be saved.
func (u *RunDeployment) Run(ctx context.Context, params RunParams) (*RunOutput, error) {
	runID := uuid.NewString()
	log := u.log.With("run", runID, "chain", params.Chain)

	u.progress.OnProgress(ctx, ProgressEvent{Stage: StagePlan, Message: "Planning deployment", Spinner: true})
	planned, err := u.planning.Run(ctx, params.PlanParams)
	if err != nil {
		return nil, err
	}
	cfg, plan, manifest := planned.Config, planned.Plan, planned.Manifest
	log = log.With("product", plan.Product)

	if plan.DeployCount() > 0 && !params.DryRun && !params.SkipConfirm {
		ok, err := u.confirmer.Confirm(ctx, fmt.Sprintf("Deploy %d components to %s (chain %d)?", plan.DeployCount(), cfg.Name, cfg.ChainID))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrAborted
		}
	}

	if params.DryRun {
		// Nothing reaches the chain, so there is nothing to wait for
		rehearsal := *cfg
		rehearsal.SettleDelay = 0
		cfg = &rehearsal
	}

	session, err := u.connector.Connect(ctx, cfg, params.DryRun)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Name, err)
	}
	defer session.Close()

	log.Info("Starting deployment run",
		"steps", len(plan.Steps),
		"deploys", plan.DeployCount(),
		"sender", session.Sender().Hex(),
		"dry_run", params.DryRun,
	)

	result := &domain.RunResult{
		RunID:     runID,
		Chain:     cfg.Name,
		ChainID:   cfg.ChainID,
		Product:   plan.Product,
		DryRun:    params.DryRun,
		StartedAt: time.Now(),
	}

	record := func() error {
		if params.DryRun {
			return nil
		}
		manifest.LastRunID = runID
		manifest.UpdatedAt = time.Now()
		return u.manifests.Save(ctx, manifest)
	}
	manifest.ChainID = cfg.ChainID
	manifest.Product = plan.Product

	addresses := make(map[string]common.Address, len(plan.Steps)+len(plan.External))
	for name, addr := range plan.External {
		addresses[name] = addr
	}
	statuses := make(map[string]domain.ComponentStatus, len(plan.Steps))

	// Deploys are strictly sequential: one account, one nonce sequence
	var runErr error
	for i, step := range plan.Steps {
		spec := step.Component
		component := domain.ComponentResult{
			Name:    spec.Name,
			Code:    spec.Code,
			Variant: spec.Variant,
			Salt:    spec.Salt,
		}

		if runErr != nil {
			component.Status = domain.StatusSkipped
			component.Reason = "run cancelled"
			statuses[spec.Name] = component.Status
			result.Components = append(result.Components, component)
			continue
		}

		// Attach steps keep their address whatever happened to their dependencies
		if blocked := blockedBy(spec, statuses); step.Action == domain.StepDeploy && len(blocked) > 0 {
			component.Status = domain.StatusSkipped
			component.SkippedBecause = blocked
			component.Reason = fmt.Sprintf("depends on failed or skipped %v", blocked)
			statuses[spec.Name] = component.Status
			result.Components = append(result.Components, component)
			log.Warn("Skipping component", "name", spec.Name, "blocked_by", blocked)
			continue
		}

		u.progress.OnProgress(ctx, ProgressEvent{
			Stage:   StageDeploy,
			Current: i + 1,
			Total:   len(plan.Steps),
			Message: fmt.Sprintf("%s %s", step.Action, spec.Name),
			Spinner: step.Action == domain.StepDeploy,
		})

		start := time.Now()
		deployed, err := u.deployer.Deploy(ctx, session, cfg, step, addresses)
		component.Duration = time.Since(start)

		if deployed != nil {
			component.Deployed = deployed
			component.Status = domain.StatusDeployed
			if deployed.WasReused {
				component.Status = domain.StatusReused
			}
			addresses[spec.Name] = deployed.Address
			if !deployed.WasReused {
				manifest.Components[spec.Name] = manifestEntry(runID, spec, deployed)
				if saveErr := record(); saveErr != nil {
					log.Error("Failed to record deployment", "name", spec.Name, "error", saveErr)
				}
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			if deployed == nil {
				component.Status = domain.StatusSkipped
				component.Reason = "run cancelled"
			}
			runErr = err
		default:
			component.Status = domain.StatusFailed
			component.Err = err
			component.Reason = err.Error()
			u.progress.Error(err.Error())
			log.Error("Deployment failed", "name", spec.Name, "error", err)
		}

		statuses[spec.Name] = component.Status
		result.Components = append(result.Components, component)
	}

	if runErr == nil {
		u.progress.OnProgress(ctx, ProgressEvent{Stage: StageInitialize, Total: len(plan.Initializers), Message: "Initializing components", Spinner: true})
		completed := manifest.CompletedInits()
		result.Initializations = u.initializer.Initialize(ctx, session, InitializeParams{
			Steps:     plan.Initializers,
			Statuses:  statuses,
			Addresses: addresses,
			Completed: completed,
		})
		for _, init := range result.Initializations {
			if init.Status == domain.InitSucceeded {
				manifest.Initialized[init.Step] = domain.InitRecord{
					Target:   addresses[init.Target],
					CallHash: init.CallHash,
					TxHash:   init.TxRef,
					RunID:    runID,
					At:       time.Now(),
				}
			}
		}
		if err := ctx.Err(); err != nil {
			runErr = err
		}
	}

	if runErr == nil && !params.SkipVerify && !params.DryRun {
		u.verifyComponents(ctx, cfg, result, manifest, params)
		for _, c := range result.Components {
			if entry, ok := manifest.Components[c.Name]; ok && c.Verification != nil && c.Verification.Verified {
				entry.Verified = true
				entry.VerifyURL = c.Verification.URL
				manifest.Components[c.Name] = entry
			}
		}
	}

	result.Cancelled = runErr != nil
	result.FinishedAt = time.Now()
	u.progress.OnProgress(ctx, ProgressEvent{Stage: StageDone, Message: "Run complete"})

	if err := record(); err != nil {
		return nil, fmt.Errorf("failed to save manifest: %w", err)
	}

	u.metrics.RecordRun(result)
	if params.MetricsFile != "" {
		if err := u.metrics.Flush(params.MetricsFile); err != nil {
			log.Warn("Failed to write metrics", "path", params.MetricsFile, "error", err)
		}
	}

	summary := u.reporter.Report(result)
	log.Info("Deployment run finished",
		"deployed", len(summary.Deployed),
		"reused", len(summary.Reused),
		"failed", len(summary.Failed),
		"skipped", len(summary.Skipped),
	)

	output := &RunOutput{Plan: plan, Result: result, Summary: summary}
	if runErr != nil {
		return output, fmt.Errorf("run interrupted: %w", runErr)
	}
	return output, nil
}

// verifyComponents submits verification for new components with auto-verify
// set. Reused components take their constructor args from the manifest.
func (u *RunDeployment) verifyComponents(ctx context.Context, cfg *domain.ChainConfig, result *domain.RunResult, manifest *domain.Manifest, params RunParams) {
	log := u.log.With("chain", cfg.Name)
	var reqs []domain.VerificationRequest
	for _, c := range result.Components {
		if !cfg.Flags(c.Name).AutoVerify || c.Deployed == nil || !c.Status.HasAddress() {
			continue
		}
		args := c.Deployed.ConstructorArgs
		if c.Status == domain.StatusReused {
			if !params.VerifyReused {
				continue
			}
			entry, recorded := manifest.Components[c.Name]
			if recorded && entry.Address != c.Deployed.Address {
				recorded = false
			}
			if recorded && entry.Verified {
				continue
			}
			if recorded {
				decoded, err := decodeHex(entry.ConstructorArgs)
				if err != nil {
					log.Warn("Skipping verification, recorded constructor args are corrupt", "name", c.Name, "error", err)
					continue
				}
				args = decoded
			}
		}
		reqs = append(reqs, domain.VerificationRequest{
			Component:       c.Name,
			Address:         c.Deployed.Address,
			Code:            c.Code,
			ConstructorArgs: args,
			ChainID:         cfg.ChainID,
			Profile:         cfg.Profile,
		})
	}
	if len(reqs) == 0 {
		return
	}

	opts := params.Verify
	if opts.PropagationDelay == 0 {
		opts.PropagationDelay = cfg.SettleDelay
	}
	for _, vr := range u.verifier.VerifyAll(ctx, reqs, opts) {
		if c, ok := result.Component(vr.Component); ok {
			c.Verification = &vr
		}
	}
}

// blockedBy returns the dependencies of spec that already failed or were skipped
func blockedBy(spec domain.ComponentSpec, statuses map[string]domain.ComponentStatus) []string {
	var blocked []string
	for _, dep := range spec.Dependencies() {
		if status, planned := statuses[dep]; planned && !status.HasAddress() {
			blocked = append(blocked, dep)
		}
	}
	return blocked
}

func manifestEntry(runID string, spec domain.ComponentSpec, deployed *domain.DeployedComponent) domain.ManifestEntry {
	entry := domain.ManifestEntry{
		Address:    deployed.Address,
		TxHash:     deployed.DeployTxRef,
		Artifact:   spec.Code.Artifact,
		Source:     spec.Code.Source,
		Variant:    spec.Variant,
		Salt:       spec.Salt,
		RunID:      runID,
		RecordedAt: time.Now(),
	}
	if len(deployed.ConstructorArgs) > 0 {
		entry.ConstructorArgs = "0x" + hex.EncodeToString(deployed.ConstructorArgs)
	}
	return entry
}
