package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSalt(t *testing.T) {
	salt, err := EncodeSalt("v1")
	require.NoError(t, err)
	assert.Equal(t, byte('v'), salt[0])
	assert.Equal(t, byte('1'), salt[1])
	assert.Equal(t, [30]byte{}, [30]byte(salt[2:]))

	same, err := EncodeSalt("v1")
	require.NoError(t, err)
	assert.Equal(t, salt, same)

	other, err := EncodeSalt("v2")
	require.NoError(t, err)
	assert.NotEqual(t, salt, other)

	_, err = EncodeSalt("0123456789012345678901234567890")
	assert.NoError(t, err)

	_, err = EncodeSalt("01234567890123456789012345678901")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestArg(t *testing.T) {
	tests := []struct {
		name     string
		arg      Arg
		refs     []string
		required bool
		str      string
	}{
		{"literal", Literal("uint256", 30), nil, false, "uint256 30"},
		{"ref", ComponentRef("address", "Vault"), []string{"Vault"}, true, "address @Vault"},
		{"ref list", RefList("address[]", []string{"Vault", "Oracle"}, false), []string{"Vault", "Oracle"}, true, "address[] [@Vault @Oracle]"},
		{"optional ref list", RefList("address[]", []string{"Zap"}, true), []string{"Zap"}, false, "address[] [@Zap]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.refs, tt.arg.References())
			assert.Equal(t, tt.required, tt.arg.Required())
			assert.Equal(t, tt.str, tt.arg.String())
		})
	}

	assert.Equal(t, "refs", ArgRefList.String())
	assert.Equal(t, "ArgKind(7)", ArgKind(7).String())
}

func TestComponentSpec_Dependencies(t *testing.T) {
	spec := ComponentSpec{
		Name: "Router",
		ConstructorArgs: []Arg{
			ComponentRef("address", "Vault"),
			Literal("uint256", 1),
			RefList("address[]", []string{"Oracle", "Vault"}, false),
		},
		DependsOn: []string{"Registry", "Oracle"},
	}

	assert.Equal(t, []string{"Vault", "Oracle", "Registry"}, spec.Dependencies())
	assert.Empty(t, ComponentSpec{Name: "Oracle"}.Dependencies())
}

func TestCodeIdentifier_Location(t *testing.T) {
	assert.Equal(t, "src/Vault.sol:Vault", CodeIdentifier{Artifact: "Vault", Source: "src/Vault.sol"}.Location())
	assert.Equal(t, "Vault", CodeIdentifier{Artifact: "Vault"}.Location())
}

func TestInitializationStep_References(t *testing.T) {
	step := InitializationStep{Args: []Arg{ComponentRef("address", "Router"), Literal("bool", true), RefList("address[]", []string{"A", "B"}, true)}}
	assert.Equal(t, []string{"Router", "A", "B"}, step.References())

	assert.True(t, InitAlreadyDone.Done())
	assert.True(t, InitSucceeded.Done())
	assert.False(t, InitSkipped.Done())
	assert.False(t, InitFailed.Done())
}
