package verification

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/creack/pty"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/catapult/internal/config"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

// commandRunner executes a command in dir and returns its combined output
type commandRunner func(ctx context.Context, dir string, name string, args ...string) ([]byte, error)

// ForgeVerifier verifies on etherscan-compatible explorers through
// forge verify-contract. The explorer recompiles the source and compares.
type ForgeVerifier struct {
	projectRoot string
	artifacts   usecase.ArtifactLoader
	run         commandRunner
	log         *slog.Logger
}

var _ usecase.ContractVerifier = (*ForgeVerifier)(nil)

// NewForgeVerifier creates a compile-and-match verifier
func NewForgeVerifier(cfg *config.RuntimeConfig, artifacts usecase.ArtifactLoader, log *slog.Logger) *ForgeVerifier {
	return &ForgeVerifier{
		projectRoot: cfg.ProjectRoot,
		artifacts:   artifacts,
		run:         runWithPTY,
		log:         log.With("component", "ForgeVerifier"),
	}
}

func (v *ForgeVerifier) Protocol() domain.VerificationProtocol {
	return domain.ProtocolCompileAndMatch
}

// Verify submits the component and watches the explorer until it reports a result
func (v *ForgeVerifier) Verify(ctx context.Context, req domain.VerificationRequest) (string, error) {
	compilerVersion := ""
	if artifact, err := v.artifacts.Load(ctx, req.Code); err == nil {
		compilerVersion = artifact.CompilerVersion
	}

	args := buildForgeArgs(req, compilerVersion)
	v.log.Debug("Running forge verify-contract", "name", req.Component, "args", redact(args, req.Profile.APIKey))

	output, runErr := v.run(ctx, v.projectRoot, "forge", args...)
	text := strings.TrimSpace(ansiEscape.ReplaceAllString(string(output), ""))

	if isAlreadyVerified(text) {
		return explorerURL(req), nil
	}
	if runErr != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("forge verify-contract failed: %w: %s", runErr, lastLine(text))
	}
	if strings.Contains(text, "successfully verified") || strings.Contains(text, "Pass - Verified") {
		return explorerURL(req), nil
	}
	return "", fmt.Errorf("verification status unclear: %s", lastLine(text))
}

func buildForgeArgs(req domain.VerificationRequest, compilerVersion string) []string {
	args := []string{
		"verify-contract",
		req.Address.Hex(),
		req.Code.Location(),
		"--chain", strconv.FormatUint(req.ChainID, 10),
		"--watch",
	}

	profile := req.Profile
	if profile.VerifierURL != "" {
		args = append(args, "--verifier-url", profile.VerifierURL)
	}
	if profile.APIKey != "" {
		args = append(args, "--etherscan-api-key", profile.APIKey)
	}
	if compilerVersion != "" {
		args = append(args, "--compiler-version", compilerVersion)
	}
	if len(req.ConstructorArgs) > 0 {
		args = append(args, "--constructor-args", strings.TrimPrefix(hexutil.Encode(req.ConstructorArgs), "0x"))
	}
	return args
}

func isAlreadyVerified(output string) bool {
	return strings.Contains(strings.ToLower(output), "already verified")
}

func explorerURL(req domain.VerificationRequest) string {
	if req.Profile.ExplorerURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/address/%s#code", strings.TrimSuffix(req.Profile.ExplorerURL, "/"), req.Address.Hex())
}

func lastLine(text string) string {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "no output"
}

func redact(args []string, secret string) []string {
	if secret == "" {
		return args
	}
	out := make([]string, len(args))
	for i, arg := range args {
		if arg == secret {
			arg = "***"
		}
		out[i] = arg
	}
	return out
}

// runWithPTY runs the command under a pseudo terminal. forge only streams
// the --watch status lines when attached to a terminal.
func runWithPTY(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "NO_COLOR=1")

	ptyFile, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to start pty: %w", err)
	}
	defer func() {
		_ = ptyFile.Close()
	}()

	var output bytes.Buffer
	// Reading fails with EIO once the child closes its side
	_, _ = io.Copy(&output, ptyFile)

	err = cmd.Wait()
	return output.Bytes(), err
}
