package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/catapult/internal/domain"
)

// Initializer issues the post-deploy calls that wire component addresses
// and static values into components with two-phase setup
type Initializer struct {
	encoder ArgEncoder
	log     *slog.Logger
}

// NewInitializer creates a new initializer
func NewInitializer(encoder ArgEncoder, log *slog.Logger) *Initializer {
	return &Initializer{
		encoder: encoder,
		log:     log.With("component", "Initializer"),
	}
}

// InitializeParams holds the state of the run the steps execute against
type InitializeParams struct {
	Steps []domain.InitializationStep
	// Statuses holds the outcome of every component planned in the run
	Statuses map[string]domain.ComponentStatus
	// Addresses holds deployed, reused and external component addresses
	Addresses map[string]common.Address
	// Completed holds the steps finished by earlier runs
	Completed map[string]domain.InitRecord
}

// Initialize runs the steps in order, one transaction at a time. A failed
// step does not stop independent steps; steps that depend on it are skipped.
func (i *Initializer) Initialize(ctx context.Context, caller ContractCaller, params InitializeParams) []domain.InitResult {
	results := make([]domain.InitResult, 0, len(params.Steps))
	outcome := make(map[string]domain.InitStatus, len(params.Steps))

	for _, step := range params.Steps {
		result := i.runStep(ctx, caller, step, params, outcome)
		outcome[step.Name] = result.Status
		results = append(results, result)

		switch result.Status {
		case domain.InitFailed:
			i.log.Error("Initialization failed", "step", step.Name, "error", result.Err)
		case domain.InitSkipped:
			i.log.Warn("Initialization skipped", "step", step.Name, "reason", result.Reason)
		}
	}

	return results
}

func (i *Initializer) runStep(
	ctx context.Context,
	caller ContractCaller,
	step domain.InitializationStep,
	params InitializeParams,
	outcome map[string]domain.InitStatus,
) domain.InitResult {
	result := domain.InitResult{Step: step.Name, Target: step.Target}
	skip := func(format string, args ...any) domain.InitResult {
		result.Status = domain.InitSkipped
		result.Reason = fmt.Sprintf(format, args...)
		return result
	}

	if err := ctx.Err(); err != nil {
		return skip("run cancelled")
	}

	if status, planned := params.Statuses[step.Target]; planned && !status.HasAddress() {
		return skip("target %s was %s", step.Target, status)
	}
	target, ok := params.Addresses[step.Target]
	if !ok {
		return skip("target %s has no address", step.Target)
	}

	for _, after := range step.After {
		status, ok := outcome[after]
		if ok && !status.Done() {
			return skip("depends on step %s, which %s", after, describeInitStatus(status))
		}
	}

	var blocked []string
	for _, arg := range step.Args {
		if !arg.Required() {
			continue
		}
		for _, ref := range arg.References() {
			if _, ok := params.Addresses[ref]; !ok {
				blocked = append(blocked, ref)
			}
		}
	}
	if len(blocked) > 0 {
		return skip("depends on %s, which has no address", strings.Join(blocked, ", "))
	}

	fail := func(err error) domain.InitResult {
		result.Status = domain.InitFailed
		result.Err = &domain.InitializationFailedError{Step: step.Name, Cause: err}
		result.Reason = err.Error()
		return result
	}

	resolved, err := ResolveArgs(step.Args, params.Addresses)
	if err != nil {
		return fail(err)
	}

	data, err := i.encoder.EncodeCall(step.Signature, resolved)
	if err != nil {
		return fail(fmt.Errorf("failed to encode %s: %w", step.Signature, err))
	}
	result.CallHash = crypto.Keccak256Hash(data)

	if done, ok := params.Completed[step.Name]; ok && done.Matches(target, result.CallHash) {
		result.Status = domain.InitAlreadyDone
		result.Reason = "completed by an earlier run"
		return result
	}

	i.log.Info("Initializing component", "step", step.Name, "target", target.Hex(), "signature", step.Signature)

	txHash, err := caller.Transact(ctx, target, data)
	if err != nil {
		return fail(err)
	}

	result.Status = domain.InitSucceeded
	result.TxRef = txHash.Hex()
	return result
}

func describeInitStatus(status domain.InitStatus) string {
	switch status {
	case domain.InitFailed:
		return "failed"
	case domain.InitSkipped:
		return "was skipped"
	default:
		return string(status)
	}
}
