package manifests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/trebuchet-org/catapult/internal/config"
	"github.com/trebuchet-org/catapult/internal/domain"
)

// DeploymentsDir holds one manifest per chain under the data directory
const DeploymentsDir = "deployments"

// FileRepository stores chain manifests as JSON files
type FileRepository struct {
	dir string
	mu  sync.RWMutex
}

// NewFileRepository creates a manifest repository under the data directory
func NewFileRepository(cfg *config.RuntimeConfig) *FileRepository {
	return &FileRepository{dir: filepath.Join(cfg.DataDir, DeploymentsDir)}
}

func (r *FileRepository) path(chain string) string {
	return filepath.Join(r.dir, chain+".json")
}

// Load reads the manifest of a chain
func (r *FileRepository) Load(ctx context.Context, chain string) (*domain.Manifest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.path(chain))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrManifestNotFound, chain)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m domain.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", r.path(chain), err)
	}
	if m.Components == nil {
		m.Components = make(map[string]domain.ManifestEntry)
	}
	if m.Initialized == nil {
		m.Initialized = make(map[string]domain.InitRecord)
	}
	return &m, nil
}

// Save writes the manifest atomically
func (r *FileRepository) Save(ctx context.Context, m *domain.Manifest) error {
	if m.Chain == "" {
		return fmt.Errorf("manifest has no chain")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", r.dir, err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}

	path := r.path(m.Chain)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// List returns the chains with a recorded manifest
func (r *FileRepository) List(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var chains []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		chains = append(chains, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(chains)
	return chains, nil
}
