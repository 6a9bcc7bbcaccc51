package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/trebuchet-org/catapult/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Verification defaults
const (
	DefaultVerifyAttempts    = 3
	DefaultVerifyConcurrency = 4
	DefaultVerifyBackoff     = 5 * time.Second
)

// VerifyOptions tunes a verification batch
type VerifyOptions struct {
	// Concurrency bounds the number of submissions in flight
	Concurrency int
	// Attempts caps submissions per component, including the first
	Attempts int
	// InitialBackoff is the first retry interval; it grows exponentially
	InitialBackoff time.Duration
	// PropagationDelay is waited once before the first submission
	PropagationDelay time.Duration
}

func (o VerifyOptions) withDefaults() VerifyOptions {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultVerifyConcurrency
	}
	if o.Attempts <= 0 {
		o.Attempts = DefaultVerifyAttempts
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = DefaultVerifyBackoff
	}
	return o
}

// VerificationService submits best-effort source verification. It never
// returns an error for a failed submission; failures only clear the
// verified flag of the result.
type VerificationService struct {
	verifiers map[domain.VerificationProtocol]ContractVerifier
	progress  ProgressSink
	log       *slog.Logger
}

// NewVerificationService creates a service dispatching on the verifiers' protocols
func NewVerificationService(verifiers []ContractVerifier, progress ProgressSink, log *slog.Logger) *VerificationService {
	byProtocol := make(map[domain.VerificationProtocol]ContractVerifier, len(verifiers))
	for _, v := range verifiers {
		byProtocol[v.Protocol()] = v
	}
	return &VerificationService{
		verifiers: byProtocol,
		progress:  progress,
		log:       log.With("component", "Verifier"),
	}
}

// VerifyAll verifies every request, at most opts.Concurrency at a time.
// Results are returned in request order.
func (s *VerificationService) VerifyAll(ctx context.Context, reqs []domain.VerificationRequest, opts VerifyOptions) []domain.VerifyResult {
	opts = opts.withDefaults()
	if len(reqs) == 0 {
		return nil
	}

	results := make([]domain.VerifyResult, len(reqs))
	if opts.PropagationDelay > 0 {
		s.log.Info("Waiting for explorers to index new contracts", "delay", opts.PropagationDelay)
		if err := sleepContext(ctx, opts.PropagationDelay); err != nil {
			for i, req := range reqs {
				results[i] = cancelledResult(req, err)
			}
			return results
		}
	}

	var (
		mu       sync.Mutex
		finished int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, req := range reqs {
		g.Go(func() error {
			result := s.Verify(gctx, req, opts)

			mu.Lock()
			results[i] = result
			finished++
			s.progress.OnProgress(ctx, ProgressEvent{
				Stage:   StageVerify,
				Current: finished,
				Total:   len(reqs),
				Message: fmt.Sprintf("verified %s", req.Component),
			})
			mu.Unlock()
			// Failures are recorded in the result and never cancel siblings
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Verify submits one request with bounded retries
func (s *VerificationService) Verify(ctx context.Context, req domain.VerificationRequest, opts VerifyOptions) domain.VerifyResult {
	opts = opts.withDefaults()
	result := domain.VerifyResult{
		Component: req.Component,
		Address:   req.Address,
		Protocol:  req.Profile.Verification,
	}

	verifier, ok := s.verifiers[req.Profile.Verification]
	if !ok {
		err := fmt.Errorf("%w: no verifier for protocol %q", domain.ErrVerificationUnsupported, req.Profile.Verification)
		return s.failed(result, err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = opts.InitialBackoff
	policy.MaxElapsedTime = 0

	var url string
	operation := func() error {
		result.Attempts++
		var err error
		url, err = verifier.Verify(ctx, req)
		if err != nil {
			s.log.Debug("Verification attempt failed", "name", req.Component, "attempt", result.Attempts, "error", err)
			if errors.Is(err, domain.ErrVerificationUnsupported) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
		}
		return err
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(opts.Attempts-1)), ctx))
	if err != nil {
		return s.failed(result, err)
	}

	result.Verified = true
	result.URL = url
	s.log.Info("Verified component", "name", req.Component, "address", req.Address.Hex(), "attempts", result.Attempts)
	return result
}

func (s *VerificationService) failed(result domain.VerifyResult, err error) domain.VerifyResult {
	result.Err = &domain.VerificationFailedError{Component: result.Component, Cause: err}
	result.Reason = err.Error()
	s.log.Warn("Verification failed", "name", result.Component, "attempts", result.Attempts, "error", err)
	return result
}

func cancelledResult(req domain.VerificationRequest, err error) domain.VerifyResult {
	return domain.VerifyResult{
		Component: req.Component,
		Address:   req.Address,
		Protocol:  req.Profile.Verification,
		Reason:    "verification cancelled",
		Err:       &domain.VerificationFailedError{Component: req.Component, Cause: err},
	}
}
