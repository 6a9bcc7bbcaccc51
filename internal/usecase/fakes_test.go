package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/catapult/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// bytecodeOf is the creation code the fake artifact loader returns
func bytecodeOf(artifact string) []byte {
	return []byte("code:" + artifact + "|")
}

type fakeResolver struct {
	configs map[string]*domain.ChainConfig
	errs    map[string]error
}

func (r *fakeResolver) Resolve(chain string) (*domain.ChainConfig, error) {
	if err, ok := r.errs[chain]; ok {
		return nil, err
	}
	cfg, ok := r.configs[chain]
	if !ok {
		return nil, &domain.ConfigNotFoundError{Chain: chain}
	}
	return cfg, nil
}

func (r *fakeResolver) Chains() []string {
	names := domain.SortedKeys(r.configs)
	for name := range r.errs {
		if _, ok := r.configs[name]; !ok {
			names = append(names, name)
		}
	}
	return names
}

type fakeCatalogs map[string]*domain.Catalog

func (c fakeCatalogs) Load(product string) (*domain.Catalog, error) {
	catalog, ok := c[product]
	if !ok {
		return nil, fmt.Errorf("unknown product %q", product)
	}
	return catalog, nil
}

func (c fakeCatalogs) Products() []string {
	return domain.SortedKeys(c)
}

type fakeArtifacts struct {
	missing map[string]bool
}

func (a *fakeArtifacts) Load(_ context.Context, code domain.CodeIdentifier) (*Artifact, error) {
	if a.missing[code.Artifact] {
		return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, code.Location())
	}
	return &Artifact{Name: code.Artifact, Source: code.Source, Bytecode: bytecodeOf(code.Artifact)}, nil
}

// fakeEncoder renders arguments as text so tests can read payloads back
type fakeEncoder struct{}

func (fakeEncoder) EncodeArgs(args []domain.ResolvedArg) ([]byte, error) {
	var b strings.Builder
	for _, arg := range args {
		if arg.Type == "invalid" {
			return nil, fmt.Errorf("%w: cannot encode %v", domain.ErrInvalidArgument, arg.Value)
		}
		fmt.Fprintf(&b, "%s=%s;", arg.Type, formatValue(arg.Value))
	}
	return []byte(b.String()), nil
}

func (e fakeEncoder) EncodeCall(signature string, args []domain.ResolvedArg) ([]byte, error) {
	encoded, err := e.EncodeArgs(args)
	if err != nil {
		return nil, err
	}
	return append([]byte(signature+":"), encoded...), nil
}

func formatValue(v any) string {
	switch value := v.(type) {
	case common.Address:
		return value.Hex()
	case []common.Address:
		parts := make([]string, len(value))
		for i, addr := range value {
			parts[i] = addr.Hex()
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprintf("%v", value)
	}
}

type transaction struct {
	to   common.Address
	data string
}

// fakeSession deploys at keccak(salt ++ keccak(payload)) and records calls
type fakeSession struct {
	mu sync.Mutex
	// failDeploy fails deployments of these artifacts
	failDeploy map[string]error
	// failCall fails calls whose data starts with the key
	failCall map[string]error
	// cancel, when set, is called after a deployment of the artifact
	cancelAfter string
	cancel      context.CancelFunc
	// existing artifacts already have code at their address
	existing map[string]bool

	deployed []string
	calls    []transaction
	closed   bool
	nonce    uint64
}

func (s *fakeSession) Deploy(_ context.Context, salt [32]byte, payload []byte) (*FacilityReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	artifact := strings.TrimPrefix(string(payload[:bytes.IndexByte(payload, '|')]), "code:")
	if err, ok := s.failDeploy[artifact]; ok {
		return nil, err
	}
	if s.existing[artifact] {
		return &FacilityReceipt{Address: predictAddress(salt, payload), Existing: true}, nil
	}
	s.nonce++
	s.deployed = append(s.deployed, artifact)
	if s.cancel != nil && artifact == s.cancelAfter {
		s.cancel()
	}
	return &FacilityReceipt{
		Address: predictAddress(salt, payload),
		TxHash:  crypto.Keccak256Hash([]byte(fmt.Sprintf("tx-%d", s.nonce))),
		GasUsed: 21000,
	}, nil
}

func (s *fakeSession) Transact(ctx context.Context, to common.Address, data []byte) (common.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return common.Hash{}, err
	}
	for prefix, err := range s.failCall {
		if strings.HasPrefix(string(data), prefix) {
			return common.Hash{}, err
		}
	}
	s.nonce++
	s.calls = append(s.calls, transaction{to: to, data: string(data)})
	return crypto.Keccak256Hash([]byte(fmt.Sprintf("tx-%d", s.nonce))), nil
}

func (s *fakeSession) Sender() common.Address {
	return common.HexToAddress("0x00000000000000000000000000000000000000d0")
}

func (s *fakeSession) Close() {
	s.closed = true
}

func predictAddress(salt [32]byte, payload []byte) common.Address {
	return common.BytesToAddress(crypto.Keccak256(salt[:], crypto.Keccak256(payload))[12:])
}

type fakeConnector struct {
	session *fakeSession
	err     error
	dryRun  bool
	cfg     *domain.ChainConfig
}

func (c *fakeConnector) Connect(_ context.Context, chain *domain.ChainConfig, dryRun bool) (ChainSession, error) {
	c.cfg = chain
	c.dryRun = dryRun
	if c.err != nil {
		return nil, c.err
	}
	return c.session, nil
}

// fakeManifests persists manifests as JSON so every load is a fresh copy
type fakeManifests struct {
	mu      sync.Mutex
	stored  map[string][]byte
	saves   int
	saveErr error
}

func newFakeManifests() *fakeManifests {
	return &fakeManifests{stored: make(map[string][]byte)}
}

func (m *fakeManifests) Load(_ context.Context, chain string) (*domain.Manifest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.stored[chain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrManifestNotFound, chain)
	}
	var manifest domain.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}

func (m *fakeManifests) Save(_ context.Context, manifest *domain.Manifest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		return err
	}
	m.stored[manifest.Chain] = data
	m.saves++
	return nil
}

func (m *fakeManifests) List(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.SortedKeys(m.stored), nil
}

func (m *fakeManifests) get(chain string) *domain.Manifest {
	manifest, err := m.Load(context.Background(), chain)
	if err != nil {
		return nil
	}
	return manifest
}

type fakeMetrics struct {
	runs    []*domain.RunResult
	flushed []string
}

func (m *fakeMetrics) RecordRun(result *domain.RunResult) {
	m.runs = append(m.runs, result)
}

func (m *fakeMetrics) Flush(path string) error {
	m.flushed = append(m.flushed, path)
	return nil
}

type fakeConfirmer struct {
	answer bool
	err    error
	asked  []string
}

func (c *fakeConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	c.asked = append(c.asked, prompt)
	return c.answer, c.err
}

type fakeVerifier struct {
	protocol domain.VerificationProtocol
	verify   func(req domain.VerificationRequest, attempt int) (string, error)

	mu       sync.Mutex
	attempts map[string]int
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (v *fakeVerifier) Protocol() domain.VerificationProtocol {
	return v.protocol
}

func (v *fakeVerifier) Verify(_ context.Context, req domain.VerificationRequest) (string, error) {
	current := v.inFlight.Add(1)
	defer v.inFlight.Add(-1)
	for {
		peak := v.peak.Load()
		if current <= peak || v.peak.CompareAndSwap(peak, current) {
			break
		}
	}

	v.mu.Lock()
	if v.attempts == nil {
		v.attempts = make(map[string]int)
	}
	v.attempts[req.Component]++
	attempt := v.attempts[req.Component]
	v.mu.Unlock()

	if v.verify != nil {
		return v.verify(req, attempt)
	}
	return "https://explorer.test/address/" + req.Address.Hex(), nil
}

func (v *fakeVerifier) attemptsFor(name string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.attempts[name]
}
