package blockchain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// Connector opens sessions against configured chains
type Connector struct {
	log  *slog.Logger
	dial func(ctx context.Context, url string) (rpcClient, error)
}

var _ usecase.ChainConnector = (*Connector)(nil)

// NewConnector creates a connector dialing chains over JSON-RPC
func NewConnector(log *slog.Logger) *Connector {
	return &Connector{
		log: log.With("component", "Connector"),
		dial: func(ctx context.Context, url string) (rpcClient, error) {
			return ethclient.DialContext(ctx, url)
		},
	}
}

// Connect dials the chain, checks that it is the configured one and that
// CreateX is deployed on it. Dry runs return a simulated session and never
// dial.
func (c *Connector) Connect(ctx context.Context, chain *domain.ChainConfig, dryRun bool) (usecase.ChainSession, error) {
	key, keyErr := crypto.HexToECDSA(strings.TrimPrefix(chain.DeployerKey, "0x"))
	if dryRun {
		// A dry run can go ahead without a usable key; the sender is then the zero address
		return NewSimulatedSession(key, chain.ChainID, c.log.With("chain", chain.Name)), nil
	}
	if keyErr != nil {
		return nil, fmt.Errorf("%w: invalid deployer key for %s", domain.ErrInvalidConfig, chain.Name)
	}

	if chain.RPCURL == "" {
		return nil, fmt.Errorf("%w: no rpc_url configured for %s", domain.ErrInvalidConfig, chain.Name)
	}

	client, err := c.dial(ctx, chain.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	networkChainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if networkChainID.Uint64() != chain.ChainID {
		client.Close()
		return nil, fmt.Errorf("chain ID mismatch: expected %d, got %d", chain.ChainID, networkChainID.Uint64())
	}

	code, err := client.CodeAt(ctx, CreateXAddress, nil)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to check CreateX: %w", err)
	}
	if len(code) == 0 {
		client.Close()
		return nil, fmt.Errorf("CreateX is not deployed on %s at %s", chain.Name, CreateXAddress.Hex())
	}

	c.log.Debug("Connected", "chain", chain.Name, "chain_id", chain.ChainID)
	return newSession(client, key, new(big.Int).SetUint64(chain.ChainID), chain.ConfirmTimeout, c.log.With("chain", chain.Name)), nil
}
