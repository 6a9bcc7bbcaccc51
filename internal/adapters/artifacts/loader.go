package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/catapult/internal/config"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// Loader reads compiled artifacts from a foundry "out" directory or a
// hardhat "artifacts" directory
type Loader struct {
	root   string
	outDir string
	mu     sync.RWMutex
	cache  map[string]*usecase.Artifact
}

// NewLoader creates a loader rooted at the project directory
func NewLoader(cfg *config.RuntimeConfig) *Loader {
	return &Loader{
		root:   cfg.ProjectRoot,
		outDir: cfg.ArtifactsDir,
		cache:  make(map[string]*usecase.Artifact),
	}
}

type artifactFile struct {
	// foundry
	Bytecode json.RawMessage `json:"bytecode"`
	RawMeta  string          `json:"rawMetadata"`
	// hardhat
	ContractName string `json:"contractName"`
	SourceName   string `json:"sourceName"`
}

type bytecodeObject struct {
	Object string `json:"object"`
}

type compilerMetadata struct {
	Compiler struct {
		Version string `json:"version"`
	} `json:"compiler"`
}

// Load returns the artifact of code, trying the foundry layout first
func (l *Loader) Load(ctx context.Context, code domain.CodeIdentifier) (*usecase.Artifact, error) {
	key := code.Location()

	l.mu.RLock()
	cached, ok := l.cache[key]
	l.mu.RUnlock()
	if ok {
		return cached, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tried []string
	for _, path := range l.candidates(code) {
		tried = append(tried, path)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
		}

		artifact, err := parseArtifact(data, code)
		if err != nil {
			return nil, fmt.Errorf("failed to parse artifact %s: %w", path, err)
		}

		l.mu.Lock()
		l.cache[key] = artifact
		l.mu.Unlock()
		return artifact, nil
	}

	return nil, fmt.Errorf("%w: %s (looked in %s)", domain.ErrArtifactNotFound, key, strings.Join(tried, ", "))
}

func (l *Loader) candidates(code domain.CodeIdentifier) []string {
	file := code.Artifact + ".json"
	var paths []string
	if l.outDir != "" {
		paths = append(paths, filepath.Join(l.resolve(l.outDir), filepath.Base(code.Source), file))
	}
	return append(paths,
		filepath.Join(l.root, "out", filepath.Base(code.Source), file),
		filepath.Join(l.root, "artifacts", code.Source, file),
	)
}

func (l *Loader) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(l.root, dir)
}

func parseArtifact(data []byte, code domain.CodeIdentifier) (*usecase.Artifact, error) {
	var file artifactFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	// foundry nests the bytecode in an object, hardhat stores the hex string
	var hexCode string
	if len(file.Bytecode) > 0 && file.Bytecode[0] == '{' {
		var obj bytecodeObject
		if err := json.Unmarshal(file.Bytecode, &obj); err != nil {
			return nil, err
		}
		hexCode = obj.Object
	} else if len(file.Bytecode) > 0 {
		if err := json.Unmarshal(file.Bytecode, &hexCode); err != nil {
			return nil, err
		}
	}

	if !strings.HasPrefix(hexCode, "0x") {
		hexCode = "0x" + hexCode
	}
	if strings.Contains(hexCode, "__") {
		return nil, fmt.Errorf("bytecode of %s has unlinked libraries", code.Location())
	}
	bytecode, err := hexutil.Decode(hexCode)
	if err != nil && hexCode != "0x" {
		return nil, fmt.Errorf("invalid bytecode: %w", err)
	}

	artifact := &usecase.Artifact{
		Name:     code.Artifact,
		Source:   code.Source,
		Bytecode: bytecode,
		Metadata: file.RawMeta,
	}
	if file.RawMeta != "" {
		var meta compilerMetadata
		if err := json.Unmarshal([]byte(file.RawMeta), &meta); err == nil {
			artifact.CompilerVersion = meta.Compiler.Version
		}
	}
	return artifact, nil
}
