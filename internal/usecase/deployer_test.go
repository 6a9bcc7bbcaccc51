package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/catapult/internal/domain"
)

func vaultStep() domain.DeploymentStep {
	return domain.DeploymentStep{
		Action: domain.StepDeploy,
		Component: domain.ComponentSpec{
			Name: "Vault",
			Code: domain.CodeIdentifier{Artifact: "Vault", Source: "src/Vault.sol"},
			ConstructorArgs: []domain.Arg{
				domain.ComponentRef("address", "Registry"),
				domain.Literal("uint16", 30),
			},
			Salt: "v1",
		},
	}
}

func TestDeployer_Deploy(t *testing.T) {
	registry := common.HexToAddress("0x1000000000000000000000000000000000000001")
	addresses := map[string]common.Address{"Registry": registry}
	chain := testChain()

	t.Run("deploys payload at the salted address", func(t *testing.T) {
		session := &fakeSession{}
		deployer := NewDeployer(&fakeArtifacts{}, fakeEncoder{}, discardLogger())

		deployed, err := deployer.Deploy(context.Background(), session, chain, vaultStep(), addresses)
		require.NoError(t, err)

		args := []byte("address=" + registry.Hex() + ";uint16=30;")
		payload := append(bytecodeOf("Vault"), args...)
		salt, err := domain.EncodeSalt("v1")
		require.NoError(t, err)

		assert.Equal(t, "Vault", deployed.Name)
		assert.Equal(t, predictAddress(salt, payload), deployed.Address)
		assert.False(t, deployed.WasReused)
		assert.NotEmpty(t, deployed.DeployTxRef)
		assert.Equal(t, args, deployed.ConstructorArgs)
		assert.Equal(t, []string{"Vault"}, session.deployed)
	})

	t.Run("same inputs give the same address", func(t *testing.T) {
		deployer := NewDeployer(&fakeArtifacts{}, fakeEncoder{}, discardLogger())
		first, err := deployer.Deploy(context.Background(), &fakeSession{}, chain, vaultStep(), addresses)
		require.NoError(t, err)
		second, err := deployer.Deploy(context.Background(), &fakeSession{}, chain, vaultStep(), addresses)
		require.NoError(t, err)
		assert.Equal(t, first.Address, second.Address)

		other := vaultStep()
		other.Component.Salt = "v2"
		third, err := deployer.Deploy(context.Background(), &fakeSession{}, chain, other, addresses)
		require.NoError(t, err)
		assert.NotEqual(t, first.Address, third.Address)
	})

	t.Run("attach step reuses without chain interaction", func(t *testing.T) {
		session := &fakeSession{}
		deployer := NewDeployer(&fakeArtifacts{}, fakeEncoder{}, discardLogger())
		step := vaultStep()
		step.Action = domain.StepAttach
		step.Address = common.HexToAddress("0x3000000000000000000000000000000000000003")

		deployed, err := deployer.Deploy(context.Background(), session, chain, step, nil)
		require.NoError(t, err)
		assert.True(t, deployed.WasReused)
		assert.Equal(t, step.Address, deployed.Address)
		assert.Empty(t, deployed.DeployTxRef)
		assert.Empty(t, session.deployed)
	})

	t.Run("no constructor args", func(t *testing.T) {
		session := &fakeSession{}
		deployer := NewDeployer(&fakeArtifacts{}, fakeEncoder{}, discardLogger())
		step := vaultStep()
		step.Component.ConstructorArgs = nil

		deployed, err := deployer.Deploy(context.Background(), session, chain, step, nil)
		require.NoError(t, err)
		assert.Nil(t, deployed.ConstructorArgs)
	})

	failures := []struct {
		name      string
		artifacts *fakeArtifacts
		session   *fakeSession
		step      func() domain.DeploymentStep
		addresses map[string]common.Address
		want      error
		contains  string
	}{
		{
			name:      "missing reference",
			artifacts: &fakeArtifacts{},
			session:   &fakeSession{},
			step:      vaultStep,
			want:      domain.ErrMissingDependency,
		},
		{
			name:      "missing artifact",
			artifacts: &fakeArtifacts{missing: map[string]bool{"Vault": true}},
			session:   &fakeSession{},
			step:      vaultStep,
			addresses: addresses,
			want:      domain.ErrArtifactNotFound,
		},
		{
			name:      "encoding failure",
			artifacts: &fakeArtifacts{},
			session:   &fakeSession{},
			step: func() domain.DeploymentStep {
				step := vaultStep()
				step.Component.ConstructorArgs = []domain.Arg{domain.Literal("invalid", "x")}
				return step
			},
			want: domain.ErrInvalidArgument,
		},
		{
			name:      "salt too long",
			artifacts: &fakeArtifacts{},
			session:   &fakeSession{},
			step: func() domain.DeploymentStep {
				step := vaultStep()
				step.Component.Salt = "this-salt-is-definitely-longer-than-31"
				return step
			},
			addresses: addresses,
			want:      domain.ErrInvalidArgument,
		},
		{
			name:      "facility reverts",
			artifacts: &fakeArtifacts{},
			session:   &fakeSession{failDeploy: map[string]error{"Vault": errors.New("execution reverted")}},
			step:      vaultStep,
			addresses: addresses,
			contains:  "execution reverted",
		},
	}

	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			deployer := NewDeployer(tt.artifacts, fakeEncoder{}, discardLogger())
			deployed, err := deployer.Deploy(context.Background(), tt.session, chain, tt.step(), tt.addresses)

			assert.Nil(t, deployed)
			assert.ErrorIs(t, err, domain.ErrDeploymentFailed)
			var failed *domain.DeploymentFailedError
			require.ErrorAs(t, err, &failed)
			assert.Equal(t, "Vault", failed.Component)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			if tt.contains != "" {
				assert.ErrorContains(t, err, tt.contains)
			}
			assert.Empty(t, tt.session.deployed)
		})
	}

	t.Run("code already at the address is recovered without a transaction", func(t *testing.T) {
		session := &fakeSession{existing: map[string]bool{"Vault": true}}
		slow := testChain()
		slow.SettleDelay = time.Hour

		deployer := NewDeployer(&fakeArtifacts{}, fakeEncoder{}, discardLogger())
		deployed, err := deployer.Deploy(context.Background(), session, slow, vaultStep(), addresses)
		require.NoError(t, err)

		payload := append(bytecodeOf("Vault"), []byte("address="+registry.Hex()+";uint16=30;")...)
		salt, err := domain.EncodeSalt("v1")
		require.NoError(t, err)
		assert.Equal(t, predictAddress(salt, payload), deployed.Address)
		assert.Empty(t, deployed.DeployTxRef)
		assert.Empty(t, session.deployed)
	})

	t.Run("cancelled during settle delay keeps the address", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		session := &fakeSession{cancelAfter: "Vault", cancel: cancel}
		slow := testChain()
		slow.SettleDelay = time.Hour

		deployer := NewDeployer(&fakeArtifacts{}, fakeEncoder{}, discardLogger())
		deployed, err := deployer.Deploy(ctx, session, slow, vaultStep(), addresses)

		assert.ErrorIs(t, err, context.Canceled)
		require.NotNil(t, deployed)
		assert.NotEqual(t, common.Address{}, deployed.Address)
	})
}

func TestResolveArgs(t *testing.T) {
	vault := common.HexToAddress("0x1000000000000000000000000000000000000001")
	addresses := map[string]common.Address{"Vault": vault}

	resolved, err := ResolveArgs([]domain.Arg{
		domain.Literal("uint256", 1),
		domain.ComponentRef("address", "Vault"),
		domain.RefList("address[]", []string{"Vault", "Gone"}, true),
		domain.RefList("address[]", []string{"Gone"}, true),
	}, addresses)
	require.NoError(t, err)
	assert.Equal(t, []domain.ResolvedArg{
		{Type: "uint256", Value: 1},
		{Type: "address", Value: vault},
		{Type: "address[]", Value: []common.Address{vault}},
		{Type: "address[]", Value: []common.Address{}},
	}, resolved)

	_, err = ResolveArgs([]domain.Arg{domain.RefList("address[]", []string{"Vault", "Gone"}, false)}, addresses)
	assert.ErrorIs(t, err, domain.ErrMissingDependency)

	_, err = ResolveArgs([]domain.Arg{{Kind: domain.ArgKind(9)}}, addresses)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
