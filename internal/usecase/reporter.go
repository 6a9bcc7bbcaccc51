package usecase

import (
	"github.com/trebuchet-org/catapult/internal/domain"
)

// Reporter aggregates run results
type Reporter struct{}

// NewReporter creates a new reporter
func NewReporter() *Reporter {
	return &Reporter{}
}

// Report summarizes a run. It has no side effects.
func (r *Reporter) Report(result *domain.RunResult) *domain.RunSummary {
	summary := &domain.RunSummary{
		RunID:     result.RunID,
		Chain:     result.Chain,
		ChainID:   result.ChainID,
		Product:   result.Product,
		DryRun:    result.DryRun,
		Duration:  result.FinishedAt.Sub(result.StartedAt),
		Deployed:  []string{},
		Reused:    []string{},
		Failed:    []string{},
		Skipped:   []string{},
		Addresses: make(map[string]string),
		Cancelled: result.Cancelled,
	}

	for _, c := range result.Components {
		switch c.Status {
		case domain.StatusDeployed:
			summary.Deployed = append(summary.Deployed, c.Name)
		case domain.StatusReused:
			summary.Reused = append(summary.Reused, c.Name)
		case domain.StatusFailed:
			summary.Failed = append(summary.Failed, c.Name)
		case domain.StatusSkipped:
			summary.Skipped = append(summary.Skipped, c.Name)
		}

		if c.Status.HasAddress() && c.Deployed != nil {
			summary.Addresses[c.Name] = c.Deployed.Address.Hex()
		}

		if c.Verification != nil {
			summary.VerifyAttempts++
			if c.Verification.Verified {
				summary.VerifySucceeded++
			} else {
				summary.Unverified = append(summary.Unverified, c.Name)
			}
		}
	}

	for _, init := range result.Initializations {
		switch init.Status {
		case domain.InitSucceeded:
			summary.InitSucceeded++
		case domain.InitFailed:
			summary.InitFailed++
		case domain.InitSkipped:
			summary.InitSkipped++
		case domain.InitAlreadyDone:
			summary.InitAlreadyDone++
		}
	}

	return summary
}
