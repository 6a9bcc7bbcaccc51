package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/catapult/internal/domain"
)

type runHarness struct {
	resolver  *fakeResolver
	catalogs  fakeCatalogs
	manifests *fakeManifests
	connector *fakeConnector
	metrics   *fakeMetrics
	confirmer *fakeConfirmer
	verifier  *fakeVerifier
}

func newRunHarness() *runHarness {
	return &runHarness{
		resolver:  &fakeResolver{configs: map[string]*domain.ChainConfig{"sepolia": testChain()}},
		catalogs:  fakeCatalogs{"vaults": testCatalog()},
		manifests: newFakeManifests(),
		connector: &fakeConnector{session: &fakeSession{}},
		metrics:   &fakeMetrics{},
		confirmer: &fakeConfirmer{answer: true},
		verifier:  &fakeVerifier{protocol: domain.ProtocolCompileAndMatch},
	}
}

func (h *runHarness) useCase() *RunDeployment {
	log := discardLogger()
	planning := NewPlanDeployment(h.resolver, h.catalogs, h.manifests, NewPlanner(log), log)
	return NewRunDeployment(
		planning,
		h.connector,
		NewDeployer(&fakeArtifacts{}, fakeEncoder{}, log),
		NewInitializer(fakeEncoder{}, log),
		NewVerificationService([]ContractVerifier{h.verifier}, NopProgress{}, log),
		NewReporter(),
		h.manifests,
		h.metrics,
		h.confirmer,
		NopProgress{},
		log,
	)
}

func (h *runHarness) run(t *testing.T, params RunParams) (*RunOutput, error) {
	t.Helper()
	if params.Chain == "" {
		params.Chain = "sepolia"
	}
	params.Verify.InitialBackoff = time.Millisecond
	return h.useCase().Run(context.Background(), params)
}

func statuses(result *domain.RunResult) map[string]domain.ComponentStatus {
	out := make(map[string]domain.ComponentStatus, len(result.Components))
	for _, c := range result.Components {
		out[c.Name] = c.Status
	}
	return out
}

func TestRunDeployment_FreshChain(t *testing.T) {
	h := newRunHarness()

	out, err := h.run(t, RunParams{SkipConfirm: true})
	require.NoError(t, err)

	session := h.connector.session
	assert.Equal(t, []string{"Registry", "Oracle", "Vault", "Router", "Zap"}, session.deployed)
	assert.True(t, session.closed)
	assert.False(t, h.connector.dryRun)

	assert.True(t, out.Summary.Success())
	assert.Equal(t, []string{"Registry", "Oracle", "Vault", "Router", "Zap"}, out.Summary.Deployed)
	assert.Equal(t, 2, out.Summary.InitSucceeded)
	assert.Equal(t, 5, out.Summary.VerifySucceeded)
	assert.NotEmpty(t, out.Result.RunID)

	// Constructor references resolve to the addresses deployed earlier in the run
	registry, _ := out.Result.Component("Registry")
	vault, _ := out.Result.Component("Vault")
	assert.Contains(t, string(vault.Deployed.ConstructorArgs), registry.Deployed.Address.Hex())

	// Initializations target the deployed components
	require.Len(t, session.calls, 2)
	assert.Equal(t, registry.Deployed.Address, session.calls[0].to)
	assert.Equal(t, "register(address):address="+vault.Deployed.Address.Hex()+";", session.calls[0].data)
	assert.Equal(t, vault.Deployed.Address, session.calls[1].to)

	manifest := h.manifests.get("sepolia")
	require.NotNil(t, manifest)
	assert.Equal(t, uint64(11155111), manifest.ChainID)
	assert.Equal(t, "vaults", manifest.Product)
	assert.Equal(t, out.Result.RunID, manifest.LastRunID)
	assert.Len(t, manifest.Components, 5)
	assert.Equal(t, vault.Deployed.Address, manifest.Components["Vault"].Address)
	assert.True(t, manifest.Components["Vault"].Verified)
	assert.Equal(t, "v1", manifest.Components["Vault"].Salt)
	assert.NotEmpty(t, manifest.Components["Vault"].ConstructorArgs)
	assert.Empty(t, manifest.Components["Oracle"].ConstructorArgs)
	assert.Equal(t, registry.Deployed.Address, manifest.Initialized["register-vault"].Target)
	assert.Contains(t, manifest.Initialized, "set-router")

	require.Len(t, h.metrics.runs, 1)
	assert.Empty(t, h.metrics.flushed)
}

func TestRunDeployment_RerunIsIdempotent(t *testing.T) {
	h := newRunHarness()
	first, err := h.run(t, RunParams{SkipConfirm: true})
	require.NoError(t, err)

	h.connector.session = &fakeSession{}
	h.confirmer = &fakeConfirmer{answer: false}
	second, err := h.run(t, RunParams{})
	require.NoError(t, err)

	assert.Empty(t, h.connector.session.deployed)
	assert.Empty(t, h.connector.session.calls)
	assert.Empty(t, h.confirmer.asked, "nothing to deploy needs no confirmation")

	assert.True(t, second.Summary.Success())
	assert.Equal(t, []string{"Registry", "Oracle", "Vault", "Router", "Zap"}, second.Summary.Reused)
	assert.Equal(t, first.Summary.Addresses, second.Summary.Addresses)
	assert.Equal(t, 2, second.Summary.InitAlreadyDone)
	assert.Equal(t, 0, second.Summary.VerifyAttempts, "reused components are not re-verified")
}

func TestRunDeployment_FailureSkipsDependents(t *testing.T) {
	h := newRunHarness()
	h.connector.session = &fakeSession{failDeploy: map[string]error{"Router": errors.New("execution reverted")}}

	out, err := h.run(t, RunParams{SkipConfirm: true})
	require.NoError(t, err)

	assert.Equal(t, map[string]domain.ComponentStatus{
		"Registry": domain.StatusDeployed,
		"Oracle":   domain.StatusDeployed,
		"Vault":    domain.StatusDeployed,
		"Router":   domain.StatusFailed,
		"Zap":      domain.StatusSkipped,
	}, statuses(out.Result))

	router, _ := out.Result.Component("Router")
	assert.ErrorIs(t, router.Err, domain.ErrDeploymentFailed)
	assert.Nil(t, router.Deployed)

	zap, _ := out.Result.Component("Zap")
	assert.Equal(t, []string{"Router"}, zap.SkippedBecause)
	assert.Nil(t, zap.Deployed, "skipped components get no placeholder address")

	assert.False(t, out.Summary.Success())
	assert.Equal(t, []string{"Router"}, out.Summary.Failed)
	assert.Equal(t, []string{"Zap"}, out.Summary.Skipped)
	assert.NotContains(t, out.Summary.Addresses, "Router")

	var initStatus = make(map[string]domain.InitStatus)
	for _, init := range out.Result.Initializations {
		initStatus[init.Step] = init.Status
	}
	assert.Equal(t, domain.InitSucceeded, initStatus["register-vault"])
	assert.Equal(t, domain.InitSkipped, initStatus["set-router"])

	manifest := h.manifests.get("sepolia")
	assert.Len(t, manifest.Components, 3)
	assert.NotContains(t, manifest.Components, "Router")
	assert.Contains(t, manifest.Initialized, "register-vault")
	assert.NotContains(t, manifest.Initialized, "set-router")

	// A second run picks up where the first stopped
	h.connector.session = &fakeSession{}
	resumed, err := h.run(t, RunParams{SkipConfirm: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"Router", "Zap"}, h.connector.session.deployed)
	assert.True(t, resumed.Summary.Success())
	assert.Equal(t, []string{"Registry", "Oracle", "Vault"}, resumed.Summary.Reused)
	assert.Equal(t, 1, resumed.Summary.InitAlreadyDone)
	assert.Equal(t, 1, resumed.Summary.InitSucceeded)
	assert.Equal(t, out.Summary.Addresses["Vault"], resumed.Summary.Addresses["Vault"])
	assert.Len(t, h.manifests.get("sepolia").Components, 5)
}

func TestRunDeployment_Cancellation(t *testing.T) {
	h := newRunHarness()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.connector.session = &fakeSession{cancelAfter: "Vault", cancel: cancel}

	out, err := h.useCase().Run(ctx, RunParams{PlanParams: PlanParams{Chain: "sepolia"}, SkipConfirm: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, out)

	assert.Equal(t, map[string]domain.ComponentStatus{
		"Registry": domain.StatusDeployed,
		"Oracle":   domain.StatusDeployed,
		"Vault":    domain.StatusDeployed,
		"Router":   domain.StatusSkipped,
		"Zap":      domain.StatusSkipped,
	}, statuses(out.Result))
	assert.True(t, out.Summary.Cancelled)
	assert.Empty(t, out.Result.Initializations)
	assert.Empty(t, h.connector.session.calls)

	// Everything that reached the chain is recorded
	manifest := h.manifests.get("sepolia")
	assert.Len(t, manifest.Components, 3)
	assert.Contains(t, manifest.Components, "Vault")
}

func TestRunDeployment_DryRun(t *testing.T) {
	h := newRunHarness()
	h.resolver.configs["sepolia"].SettleDelay = time.Hour

	out, err := h.run(t, RunParams{DryRun: true})
	require.NoError(t, err)

	assert.True(t, h.connector.dryRun)
	assert.Zero(t, h.connector.cfg.SettleDelay)
	assert.Equal(t, time.Hour, h.resolver.configs["sepolia"].SettleDelay, "resolved config is not modified")
	assert.Empty(t, h.confirmer.asked)
	assert.Zero(t, h.manifests.saves)
	assert.Equal(t, 0, h.verifier.attemptsFor("Vault"))

	assert.True(t, out.Result.DryRun)
	assert.True(t, out.Summary.Success())
	assert.Len(t, out.Summary.Deployed, 5)
}

func TestRunDeployment_Confirmation(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		h := newRunHarness()
		h.confirmer.answer = false

		out, err := h.run(t, RunParams{})
		assert.ErrorIs(t, err, domain.ErrAborted)
		assert.Nil(t, out)
		assert.Nil(t, h.connector.cfg, "no connection before approval")
		require.Len(t, h.confirmer.asked, 1)
		assert.Contains(t, h.confirmer.asked[0], "Deploy 5 components to sepolia (chain 11155111)")
	})

	t.Run("prompt error", func(t *testing.T) {
		h := newRunHarness()
		h.confirmer.err = errors.New("not a terminal")

		_, err := h.run(t, RunParams{})
		assert.ErrorContains(t, err, "not a terminal")
	})

	t.Run("approved", func(t *testing.T) {
		h := newRunHarness()
		_, err := h.run(t, RunParams{})
		require.NoError(t, err)
		assert.Len(t, h.confirmer.asked, 1)
		assert.Len(t, h.connector.session.deployed, 5)
	})
}

func TestRunDeployment_Reuse(t *testing.T) {
	h := newRunHarness()
	registry := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	out, err := h.run(t, RunParams{
		PlanParams:   PlanParams{Reuse: map[string]common.Address{"Registry": registry}},
		SkipConfirm:  true,
		VerifyReused: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Oracle", "Vault", "Router", "Zap"}, h.connector.session.deployed)
	vault, _ := out.Result.Component("Vault")
	assert.Contains(t, string(vault.Deployed.ConstructorArgs), registry.Hex())
	assert.Equal(t, registry, h.connector.session.calls[0].to)

	reg, _ := out.Result.Component("Registry")
	require.NotNil(t, reg.Verification, "--verify-reused verifies reused components")
	assert.True(t, reg.Verification.Verified)
	assert.NotContains(t, h.manifests.get("sepolia").Components, "Registry", "reused components are not recorded")
}

func TestRunDeployment_ReusedComponentWithFailedDependency(t *testing.T) {
	h := newRunHarness()
	h.connector.session = &fakeSession{failDeploy: map[string]error{"Registry": errors.New("execution reverted")}}
	vault := common.HexToAddress("0x00000000000000000000000000000000000000bb")

	out, err := h.run(t, RunParams{
		PlanParams:  PlanParams{Reuse: map[string]common.Address{"Vault": vault}},
		SkipConfirm: true,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]domain.ComponentStatus{
		"Registry": domain.StatusFailed,
		"Oracle":   domain.StatusDeployed,
		"Vault":    domain.StatusReused,
		"Router":   domain.StatusDeployed,
		"Zap":      domain.StatusDeployed,
	}, statuses(out.Result))

	reused, _ := out.Result.Component("Vault")
	require.NotNil(t, reused.Deployed)
	assert.True(t, reused.Deployed.WasReused)
	assert.Equal(t, vault, reused.Deployed.Address)
	assert.Empty(t, reused.SkippedBecause)

	router, _ := out.Result.Component("Router")
	assert.Contains(t, string(router.Deployed.ConstructorArgs), vault.Hex())
	assert.Equal(t, []string{"Oracle", "Router", "Zap"}, h.connector.session.deployed)

	assert.Equal(t, []string{"Registry"}, out.Summary.Failed)
	assert.Empty(t, out.Summary.Skipped)
	assert.Equal(t, vault.Hex(), out.Summary.Addresses["Vault"])
}

func TestRunDeployment_VerifyReusedUsesRecordedArgs(t *testing.T) {
	h := newRunHarness()
	_, err := h.run(t, RunParams{SkipConfirm: true, SkipVerify: true})
	require.NoError(t, err)

	recorded := h.manifests.get("sepolia")
	oracle := recorded.Components["Oracle"]
	oracle.Verified = true
	recorded.Components["Oracle"] = oracle
	require.NoError(t, h.manifests.Save(context.Background(), recorded))

	var mu sync.Mutex
	submitted := make(map[string][]byte)
	h.verifier.verify = func(req domain.VerificationRequest, _ int) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		submitted[req.Component] = req.ConstructorArgs
		return "https://explorer.test/" + req.Component, nil
	}

	h.connector.session = &fakeSession{}
	out, err := h.run(t, RunParams{SkipConfirm: true, VerifyReused: true})
	require.NoError(t, err)
	assert.Len(t, out.Summary.Reused, 5)

	for _, name := range []string{"Registry", "Vault", "Router"} {
		want, err := decodeHex(recorded.Components[name].ConstructorArgs)
		require.NoError(t, err)
		require.NotEmpty(t, want, name)
		assert.Equal(t, want, submitted[name], name)
	}
	assert.NotContains(t, submitted, "Oracle", "components recorded as verified are not resubmitted")
	assert.Contains(t, submitted, "Zap")
	assert.True(t, h.manifests.get("sepolia").Components["Registry"].Verified)
}

func TestRunDeployment_VerificationSelection(t *testing.T) {
	h := newRunHarness()
	cfg := h.resolver.configs["sepolia"]
	cfg.Components["Oracle"] = domain.ComponentFlags{Enabled: true, AutoVerify: false}
	h.verifier.verify = func(req domain.VerificationRequest, _ int) (string, error) {
		if req.Component == "Zap" {
			return "", errors.New("explorer down")
		}
		return "https://explorer.test/" + req.Component, nil
	}

	out, err := h.run(t, RunParams{SkipConfirm: true, Verify: VerifyOptions{Attempts: 1}})
	require.NoError(t, err)

	oracle, _ := out.Result.Component("Oracle")
	assert.Nil(t, oracle.Verification)
	assert.Equal(t, 4, out.Summary.VerifyAttempts)
	assert.Equal(t, []string{"Zap"}, out.Summary.Unverified)
	assert.True(t, out.Summary.Success(), "verification failures do not fail the run")

	manifest := h.manifests.get("sepolia")
	assert.True(t, manifest.Components["Vault"].Verified)
	assert.Equal(t, "https://explorer.test/Vault", manifest.Components["Vault"].VerifyURL)
	assert.False(t, manifest.Components["Zap"].Verified)
	assert.False(t, manifest.Components["Oracle"].Verified)
}

func TestRunDeployment_SkipVerify(t *testing.T) {
	h := newRunHarness()
	out, err := h.run(t, RunParams{SkipConfirm: true, SkipVerify: true, MetricsFile: "metrics.prom"})
	require.NoError(t, err)

	assert.Equal(t, 0, out.Summary.VerifyAttempts)
	assert.Equal(t, []string{"metrics.prom"}, h.metrics.flushed)
}

func TestRunDeployment_Errors(t *testing.T) {
	t.Run("unknown chain", func(t *testing.T) {
		h := newRunHarness()
		_, err := h.run(t, RunParams{PlanParams: PlanParams{Chain: "mainnet"}})
		assert.ErrorIs(t, err, domain.ErrConfigNotFound)
	})

	t.Run("connection failure", func(t *testing.T) {
		h := newRunHarness()
		h.connector.err = errors.New("dial tcp: connection refused")

		_, err := h.run(t, RunParams{SkipConfirm: true})
		assert.ErrorContains(t, err, "failed to connect to sepolia")
		assert.Zero(t, h.manifests.saves)
	})

	t.Run("manifest from another chain", func(t *testing.T) {
		h := newRunHarness()
		require.NoError(t, h.manifests.Save(context.Background(), domain.NewManifest("sepolia", 1, "vaults")))

		_, err := h.run(t, RunParams{SkipConfirm: true})
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})

	t.Run("manifest save failure", func(t *testing.T) {
		h := newRunHarness()
		h.manifests.saveErr = errors.New("disk full")

		_, err := h.run(t, RunParams{SkipConfirm: true})
		assert.ErrorContains(t, err, "failed to save manifest: disk full")
	})

	t.Run("fresh ignores the manifest", func(t *testing.T) {
		h := newRunHarness()
		_, err := h.run(t, RunParams{SkipConfirm: true})
		require.NoError(t, err)

		h.connector.session = &fakeSession{}
		out, err := h.run(t, RunParams{PlanParams: PlanParams{Fresh: true}, SkipConfirm: true})
		require.NoError(t, err)
		assert.Len(t, out.Summary.Deployed, 5)
	})
}
