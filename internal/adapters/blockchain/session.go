package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/catapult/internal/adapters/abi/bindings"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// CreateXAddress is the CreateX factory, deployed at the same address on every supported chain
var CreateXAddress = common.HexToAddress("0xba5Ed099633D3B313e4D5F7bdc1305d3c28ba5Ed")

const (
	gasBufferPercent = 120
	receiptPollEvery = 2 * time.Second
)

// Session signs and sends transactions for one account on one chain
type Session struct {
	client         rpcClient
	key            *ecdsa.PrivateKey
	from           common.Address
	chainID        *big.Int
	factory        common.Address
	createX        *bindings.CreateX
	confirmTimeout time.Duration
	pollInterval   time.Duration
	log            *slog.Logger
}

var _ usecase.ChainSession = (*Session)(nil)

func newSession(client rpcClient, key *ecdsa.PrivateKey, chainID *big.Int, confirmTimeout time.Duration, log *slog.Logger) *Session {
	from := crypto.PubkeyToAddress(key.PublicKey)
	return &Session{
		client:         client,
		key:            key,
		from:           from,
		chainID:        chainID,
		factory:        CreateXAddress,
		createX:        bindings.NewCreateX(),
		confirmTimeout: confirmTimeout,
		pollInterval:   receiptPollEvery,
		log:            log.With("sender", from.Hex()),
	}
}

// Sender returns the signing account
func (s *Session) Sender() common.Address {
	return s.from
}

// Close releases the RPC connection
func (s *Session) Close() {
	s.client.Close()
}

// Deploy sends deployCreate2(salt, payload) to CreateX and returns the
// address announced by its ContractCreation event. When code already exists
// at the predicted address nothing is sent and that address is returned.
func (s *Session) Deploy(ctx context.Context, salt [32]byte, payload []byte) (*usecase.FacilityReceipt, error) {
	predicted, err := PredictAddress(s.from, s.chainID.Uint64(), salt, payload)
	if err != nil {
		return nil, err
	}

	code, err := s.client.CodeAt(ctx, predicted, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check code at %s: %w", predicted.Hex(), err)
	}
	if len(code) > 0 {
		s.log.Info("Contract already deployed at predicted address", "address", predicted.Hex())
		return &usecase.FacilityReceipt{Address: predicted, Existing: true}, nil
	}

	data, err := s.createX.TryPackDeployCreate2(salt, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to pack deployCreate2: %w", err)
	}

	receipt, err := s.send(ctx, s.factory, data)
	if err != nil {
		return nil, err
	}

	for _, log := range receipt.Logs {
		if log.Address != s.factory {
			continue
		}
		event, err := s.createX.UnpackContractCreationEvent(log)
		if err != nil {
			continue
		}
		if event.NewContract != predicted {
			s.log.Warn("CreateX deployed at an unexpected address", "expected", predicted.Hex(), "actual", event.NewContract.Hex())
		}
		return &usecase.FacilityReceipt{
			Address: event.NewContract,
			TxHash:  receipt.TxHash,
			GasUsed: receipt.GasUsed,
		}, nil
	}

	return nil, fmt.Errorf("no ContractCreation event in tx %s", receipt.TxHash.Hex())
}

// Transact sends a call and waits for a successful receipt
func (s *Session) Transact(ctx context.Context, to common.Address, data []byte) (common.Hash, error) {
	receipt, err := s.send(ctx, to, data)
	if err != nil {
		return common.Hash{}, err
	}
	return receipt.TxHash, nil
}

func (s *Session) send(ctx context.Context, to common.Address, data []byte) (*types.Receipt, error) {
	nonce, err := s.client.PendingNonceAt(ctx, s.from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	gas, err := s.client.EstimateGas(ctx, ethereum.CallMsg{From: s.from, To: &to, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}
	gas = gas * gasBufferPercent / 100

	tx, err := s.buildTx(ctx, nonce, to, gas, data)
	if err != nil {
		return nil, err
	}

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(s.chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	s.log.Debug("Transaction sent", "tx", signed.Hash().Hex(), "to", to.Hex(), "nonce", nonce, "gas", gas)
	return s.waitReceipt(ctx, signed.Hash())
}

// buildTx creates an EIP-1559 transaction, or a legacy one on chains without a base fee
func (s *Session) buildTx(ctx context.Context, nonce uint64, to common.Address, gas uint64, data []byte) (*types.Transaction, error) {
	head, err := s.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest header: %w", err)
	}

	if head.BaseFee == nil {
		gasPrice, err := s.client.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to suggest gas price: %w", err)
		}
		return types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			To:       &to,
			Gas:      gas,
			GasPrice: gasPrice,
			Data:     data,
		}), nil
	}

	tip, err := s.client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas tip: %w", err)
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     nonce,
		To:        &to,
		Gas:       gas,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Data:      data,
	}), nil
}

// waitReceipt polls until the transaction is included or the confirmation timeout expires
func (s *Session) waitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := s.client.TransactionReceipt(waitCtx, hash)
		switch {
		case err == nil && receipt != nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, fmt.Errorf("transaction %s reverted", hash.Hex())
			}
			return receipt, nil
		case err != nil && !errors.Is(err, ethereum.NotFound):
			s.log.Debug("Receipt lookup failed", "tx", hash.Hex(), "error", err)
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("timed out after %s waiting for tx %s", s.confirmTimeout, hash.Hex())
		case <-ticker.C:
		}
	}
}
