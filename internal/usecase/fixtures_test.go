package usecase

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/catapult/internal/domain"
)

var testAdmin = common.HexToAddress("0x00000000000000000000000000000000000000ad")

// testCatalog is a small product: Vault needs Registry and Oracle, Router
// needs Vault and Oracle, Zap is ordered after Router without a reference
func testCatalog() *domain.Catalog {
	return &domain.Catalog{
		Product: "vaults",
		Version: "1.0.0",
		Components: []domain.CatalogComponent{
			{
				Name: "Registry", Artifact: "Registry", Source: "src/Registry.sol",
				Args: []domain.CatalogArg{{Type: "address", Config: "admin"}},
			},
			{Name: "Oracle", Artifact: "Oracle", Source: "src/Oracle.sol"},
			{
				Name: "Vault", Artifact: "Vault", Source: "src/Vault.sol",
				Args: []domain.CatalogArg{
					{Type: "address", Ref: "Registry"},
					{Type: "address", Ref: "Oracle"},
					{Type: "uint16", Config: "fee"},
				},
				Variants: map[string]domain.CatalogVariant{
					"v2": {Artifact: "VaultV2", Source: "src/VaultV2.sol", Args: []domain.CatalogArg{
						{Type: "address", Ref: "Registry"},
						{Type: "uint16", Config: "fee"},
					}},
				},
			},
			{
				Name: "Router", Artifact: "Router", Source: "src/Router.sol",
				Args: []domain.CatalogArg{{Type: "address[]", Refs: []string{"Vault", "Oracle"}}},
			},
			{Name: "Zap", Artifact: "Zap", Source: "src/Zap.sol", DependsOn: []string{"Router"}},
		},
		Initializers: []domain.CatalogInitializer{
			{
				Name: "set-router", Target: "Vault", Signature: "setRouter(address)",
				Args:  []domain.CatalogArg{{Type: "address", Ref: "Router"}},
				After: []string{"register-vault"},
			},
			{
				Name: "register-vault", Target: "Registry", Signature: "register(address)",
				Args: []domain.CatalogArg{{Type: "address", Ref: "Vault"}},
			},
		},
	}
}

func allEnabled(names ...string) map[string]domain.ComponentFlags {
	flags := make(map[string]domain.ComponentFlags, len(names))
	for _, name := range names {
		flags[name] = domain.ComponentFlags{Enabled: true, AutoVerify: true}
	}
	return flags
}

func testChain() *domain.ChainConfig {
	return &domain.ChainConfig{
		Name:    "sepolia",
		ChainID: 11155111,
		RPCURL:  "http://localhost:8545",
		Product: "vaults",
		Profile: domain.ChainProfile{
			Name:         "testnet",
			Admin:        testAdmin,
			Verification: domain.ProtocolCompileAndMatch,
			ExplorerURL:  "https://sepolia.etherscan.io",
		},
		Salt:       "v1",
		Components: allEnabled("Registry", "Oracle", "Vault", "Router", "Zap"),
		Values: map[string]any{
			"admin": testAdmin.Hex(),
			"fee":   30,
		},
	}
}

func stepNames(plan *domain.DeploymentPlan) []string {
	return plan.Names()
}

func initNames(steps []domain.InitializationStep) []string {
	names := make([]string, len(steps))
	for i, step := range steps {
		names[i] = step.Name
	}
	return names
}
