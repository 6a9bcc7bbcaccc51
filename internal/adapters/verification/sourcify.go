package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/trebuchet-org/catapult/internal/config"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// DefaultSourcifyURL is the public sourcify server
const DefaultSourcifyURL = "https://sourcify.dev/server"

// SourcifyVerifier pushes the compiler metadata and the sources it names
// to a sourcify server
type SourcifyVerifier struct {
	projectRoot string
	artifacts   usecase.ArtifactLoader
	client      *http.Client
	log         *slog.Logger
}

var _ usecase.ContractVerifier = (*SourcifyVerifier)(nil)

// NewSourcifyVerifier creates a source-map verifier
func NewSourcifyVerifier(cfg *config.RuntimeConfig, artifacts usecase.ArtifactLoader, log *slog.Logger) *SourcifyVerifier {
	return &SourcifyVerifier{
		projectRoot: cfg.ProjectRoot,
		artifacts:   artifacts,
		client:      &http.Client{Timeout: 2 * time.Minute},
		log:         log.With("component", "SourcifyVerifier"),
	}
}

func (v *SourcifyVerifier) Protocol() domain.VerificationProtocol {
	return domain.ProtocolSourceMap
}

type sourcifyRequest struct {
	Address string            `json:"address"`
	Chain   string            `json:"chain"`
	Files   map[string]string `json:"files"`
}

type sourcifyResponse struct {
	Result []struct {
		Address string `json:"address"`
		ChainID string `json:"chainId"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"result"`
	Error string `json:"error"`
}

type metadataSources struct {
	Sources map[string]struct {
		Content string `json:"content"`
	} `json:"sources"`
}

// Verify posts the metadata bundle to <server>/verify
func (v *SourcifyVerifier) Verify(ctx context.Context, req domain.VerificationRequest) (string, error) {
	files, err := v.bundle(ctx, req.Code)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(sourcifyRequest{
		Address: req.Address.Hex(),
		Chain:   strconv.FormatUint(req.ChainID, 10),
		Files:   files,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode sourcify request: %w", err)
	}

	server := req.Profile.VerifierURL
	if server == "" {
		server = DefaultSourcifyURL
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(server, "/")+"/verify", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	v.log.Debug("Submitting to sourcify", "name", req.Component, "server", server, "files", len(files))
	resp, err := v.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sourcify request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read sourcify response: %w", err)
	}

	var parsed sourcifyResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("unexpected sourcify response (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		if isAlreadyVerified(parsed.Error) {
			return v.lookupURL(req), nil
		}
		return "", fmt.Errorf("sourcify rejected %s (%d): %s", req.Component, resp.StatusCode, parsed.Error)
	}

	for _, match := range parsed.Result {
		switch match.Status {
		case "perfect", "partial":
			return v.lookupURL(req), nil
		}
		if match.Message != "" {
			return "", fmt.Errorf("sourcify: %s", match.Message)
		}
	}
	return "", fmt.Errorf("sourcify returned no match for %s", req.Address.Hex())
}

// bundle collects metadata.json and every source file the metadata names
func (v *SourcifyVerifier) bundle(ctx context.Context, code domain.CodeIdentifier) (map[string]string, error) {
	artifact, err := v.artifacts.Load(ctx, code)
	if err != nil {
		return nil, err
	}
	if artifact.Metadata == "" {
		return nil, fmt.Errorf("%w: artifact %s has no compiler metadata, rebuild with metadata output", domain.ErrVerificationUnsupported, code.Location())
	}

	var meta metadataSources
	if err := json.Unmarshal([]byte(artifact.Metadata), &meta); err != nil {
		return nil, fmt.Errorf("%w: invalid compiler metadata for %s: %v", domain.ErrVerificationUnsupported, code.Location(), err)
	}

	files := map[string]string{"metadata.json": artifact.Metadata}
	for path, source := range meta.Sources {
		if source.Content != "" {
			files[path] = source.Content
			continue
		}
		content, err := os.ReadFile(filepath.Join(v.projectRoot, filepath.FromSlash(path)))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: source %s named by %s metadata is missing", domain.ErrVerificationUnsupported, path, code.Artifact)
			}
			return nil, err
		}
		files[path] = string(content)
	}
	return files, nil
}

func (v *SourcifyVerifier) lookupURL(req domain.VerificationRequest) string {
	if req.Profile.ExplorerURL != "" {
		return explorerURL(req)
	}
	return fmt.Sprintf("https://sourcify.dev/#/lookup/%s", req.Address.Hex())
}
