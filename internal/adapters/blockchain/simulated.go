package blockchain

import (
	"context"
	"crypto/ecdsa"
	"encoding/binary"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// SimulatedSession stands in for a chain during dry runs. Deployments get
// the address CreateX would assign them and calls only get a fake
// transaction hash.
type SimulatedSession struct {
	mu      sync.Mutex
	from    common.Address
	chainID uint64
	nonce   uint64
	log     *slog.Logger
}

var _ usecase.ChainSession = (*SimulatedSession)(nil)

// NewSimulatedSession creates a dry-run session. key may be nil.
func NewSimulatedSession(key *ecdsa.PrivateKey, chainID uint64, log *slog.Logger) *SimulatedSession {
	s := &SimulatedSession{chainID: chainID, log: log.With("dry_run", true)}
	if key != nil {
		s.from = crypto.PubkeyToAddress(key.PublicKey)
	}
	return s
}

func (s *SimulatedSession) Sender() common.Address {
	return s.from
}

func (s *SimulatedSession) Close() {}

func (s *SimulatedSession) Deploy(ctx context.Context, salt [32]byte, payload []byte) (*usecase.FacilityReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	addr, err := PredictAddress(s.from, s.chainID, salt, payload)
	if err != nil {
		return nil, err
	}
	hash := s.nextHash(addr, payload)
	s.log.Debug("Simulated deployment", "address", addr.Hex(), "tx", hash.Hex())
	return &usecase.FacilityReceipt{Address: addr, TxHash: hash}, nil
}

func (s *SimulatedSession) Transact(ctx context.Context, to common.Address, data []byte) (common.Hash, error) {
	if err := ctx.Err(); err != nil {
		return common.Hash{}, err
	}
	hash := s.nextHash(to, data)
	s.log.Debug("Simulated call", "to", to.Hex(), "tx", hash.Hex())
	return hash, nil
}

// nextHash derives a unique hash per simulated transaction
func (s *SimulatedSession) nextHash(to common.Address, data []byte) common.Hash {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonce++
	return crypto.Keccak256Hash(s.from[:], to[:], binary.BigEndian.AppendUint64(nil, s.nonce), data)
}
