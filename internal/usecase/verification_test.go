package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/catapult/internal/domain"
)

func verifyRequest(name string, protocol domain.VerificationProtocol) domain.VerificationRequest {
	return domain.VerificationRequest{
		Component: name,
		Address:   vaultAddr,
		Code:      domain.CodeIdentifier{Artifact: name, Source: "src/" + name + ".sol"},
		ChainID:   11155111,
		Profile:   domain.ChainProfile{Name: "testnet", Verification: protocol},
	}
}

var fastRetry = VerifyOptions{InitialBackoff: time.Millisecond}

func TestVerificationService_Verify(t *testing.T) {
	t.Run("success on first attempt", func(t *testing.T) {
		verifier := &fakeVerifier{protocol: domain.ProtocolCompileAndMatch}
		service := NewVerificationService([]ContractVerifier{verifier}, NopProgress{}, discardLogger())

		result := service.Verify(context.Background(), verifyRequest("Vault", domain.ProtocolCompileAndMatch), fastRetry)
		assert.True(t, result.Verified)
		assert.Equal(t, 1, result.Attempts)
		assert.Equal(t, domain.ProtocolCompileAndMatch, result.Protocol)
		assert.Equal(t, "https://explorer.test/address/"+vaultAddr.Hex(), result.URL)
		assert.NoError(t, result.Err)
	})

	t.Run("dispatches on the profile protocol", func(t *testing.T) {
		forge := &fakeVerifier{protocol: domain.ProtocolCompileAndMatch}
		sourcify := &fakeVerifier{protocol: domain.ProtocolSourceMap}
		service := NewVerificationService([]ContractVerifier{forge, sourcify}, NopProgress{}, discardLogger())

		result := service.Verify(context.Background(), verifyRequest("Vault", domain.ProtocolSourceMap), fastRetry)
		assert.True(t, result.Verified)
		assert.Equal(t, 1, sourcify.attemptsFor("Vault"))
		assert.Equal(t, 0, forge.attemptsFor("Vault"))
	})

	t.Run("retries until success", func(t *testing.T) {
		verifier := &fakeVerifier{
			protocol: domain.ProtocolCompileAndMatch,
			verify: func(req domain.VerificationRequest, attempt int) (string, error) {
				if attempt < 3 {
					return "", errors.New("contract not indexed yet")
				}
				return "https://explorer.test/ok", nil
			},
		}
		service := NewVerificationService([]ContractVerifier{verifier}, NopProgress{}, discardLogger())

		result := service.Verify(context.Background(), verifyRequest("Vault", domain.ProtocolCompileAndMatch), VerifyOptions{Attempts: 3, InitialBackoff: time.Millisecond})
		assert.True(t, result.Verified)
		assert.Equal(t, 3, result.Attempts)
	})

	t.Run("gives up after the attempt cap", func(t *testing.T) {
		verifier := &fakeVerifier{
			protocol: domain.ProtocolCompileAndMatch,
			verify: func(domain.VerificationRequest, int) (string, error) {
				return "", errors.New("bytecode mismatch")
			},
		}
		service := NewVerificationService([]ContractVerifier{verifier}, NopProgress{}, discardLogger())

		result := service.Verify(context.Background(), verifyRequest("Vault", domain.ProtocolCompileAndMatch), VerifyOptions{Attempts: 2, InitialBackoff: time.Millisecond})
		assert.False(t, result.Verified)
		assert.Equal(t, 2, result.Attempts)
		assert.Equal(t, 2, verifier.attemptsFor("Vault"))
		assert.ErrorIs(t, result.Err, domain.ErrVerificationFailed)
		assert.Contains(t, result.Reason, "bytecode mismatch")
	})

	t.Run("unsupported requests are not retried", func(t *testing.T) {
		verifier := &fakeVerifier{
			protocol: domain.ProtocolSourceMap,
			verify: func(domain.VerificationRequest, int) (string, error) {
				return "", fmt.Errorf("%w: metadata missing", domain.ErrVerificationUnsupported)
			},
		}
		service := NewVerificationService([]ContractVerifier{verifier}, NopProgress{}, discardLogger())

		result := service.Verify(context.Background(), verifyRequest("Vault", domain.ProtocolSourceMap), VerifyOptions{Attempts: 5, InitialBackoff: time.Millisecond})
		assert.False(t, result.Verified)
		assert.Equal(t, 1, result.Attempts)
		assert.ErrorIs(t, result.Err, domain.ErrVerificationUnsupported)
	})

	t.Run("no verifier for the protocol", func(t *testing.T) {
		service := NewVerificationService(nil, NopProgress{}, discardLogger())

		result := service.Verify(context.Background(), verifyRequest("Vault", domain.ProtocolSourceMap), fastRetry)
		assert.False(t, result.Verified)
		assert.Equal(t, 0, result.Attempts)
		assert.ErrorIs(t, result.Err, domain.ErrVerificationUnsupported)
	})
}

func TestVerificationService_VerifyAll(t *testing.T) {
	t.Run("bounded concurrency and request order", func(t *testing.T) {
		release := make(chan struct{})
		verifier := &fakeVerifier{
			protocol: domain.ProtocolCompileAndMatch,
			verify: func(req domain.VerificationRequest, _ int) (string, error) {
				<-release
				if req.Component == "C" {
					return "", fmt.Errorf("%w: no sources", domain.ErrVerificationUnsupported)
				}
				return "url-" + req.Component, nil
			},
		}
		service := NewVerificationService([]ContractVerifier{verifier}, NopProgress{}, discardLogger())

		var reqs []domain.VerificationRequest
		for _, name := range []string{"A", "B", "C", "D", "E"} {
			reqs = append(reqs, verifyRequest(name, domain.ProtocolCompileAndMatch))
		}

		done := make(chan []domain.VerifyResult)
		go func() {
			done <- service.VerifyAll(context.Background(), reqs, VerifyOptions{Concurrency: 2, InitialBackoff: time.Millisecond})
		}()

		require.Eventually(t, func() bool { return verifier.inFlight.Load() == 2 }, time.Second, time.Millisecond)
		close(release)
		results := <-done

		assert.LessOrEqual(t, verifier.peak.Load(), int32(2))
		require.Len(t, results, 5)
		for i, name := range []string{"A", "B", "C", "D", "E"} {
			assert.Equal(t, name, results[i].Component)
			assert.Equal(t, name != "C", results[i].Verified, name)
		}
		assert.Equal(t, "url-E", results[4].URL)
	})

	t.Run("empty batch", func(t *testing.T) {
		service := NewVerificationService(nil, NopProgress{}, discardLogger())
		assert.Empty(t, service.VerifyAll(context.Background(), nil, VerifyOptions{}))
	})

	t.Run("cancelled during propagation delay", func(t *testing.T) {
		verifier := &fakeVerifier{protocol: domain.ProtocolCompileAndMatch}
		service := NewVerificationService([]ContractVerifier{verifier}, NopProgress{}, discardLogger())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		results := service.VerifyAll(ctx, []domain.VerificationRequest{verifyRequest("A", domain.ProtocolCompileAndMatch)}, VerifyOptions{PropagationDelay: time.Hour})

		require.Len(t, results, 1)
		assert.False(t, results[0].Verified)
		assert.Equal(t, "verification cancelled", results[0].Reason)
		assert.ErrorIs(t, results[0].Err, context.Canceled)
		assert.Equal(t, 0, verifier.attemptsFor("A"))
	})
}
