package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/catapult/internal/domain"
)

// Defaults applied when neither the chain nor the common section sets a value
const (
	DefaultSettleDelay    = 60 * time.Second
	DefaultConfirmTimeout = 5 * time.Minute
	maxSaltLength         = 31
)

// Resolver merges common, profile and chain sections into a ChainConfig.
// The project file is loaded on first use.
type Resolver struct {
	path     string
	log      *slog.Logger
	validate *validator.Validate

	once    sync.Once
	file    *ProjectFile
	loadErr error
}

// NewResolver creates a resolver for the project's chain configuration
func NewResolver(cfg *RuntimeConfig, log *slog.Logger) *Resolver {
	return &Resolver{
		path:     cfg.ConfigFile,
		log:      log.With("component", "ConfigResolver"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// NewResolverFromFile creates a resolver over an already decoded project file
func NewResolverFromFile(file *ProjectFile, log *slog.Logger) *Resolver {
	r := &Resolver{
		log:      log.With("component", "ConfigResolver"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		file:     file,
	}
	r.once.Do(func() {})
	return r
}

func (r *Resolver) load() (*ProjectFile, error) {
	r.once.Do(func() {
		if _, err := os.Stat(r.path); errors.Is(err, os.ErrNotExist) {
			r.loadErr = fmt.Errorf("%w: %s not found", domain.ErrInvalidConfig, r.path)
			return
		}
		r.file, r.loadErr = LoadProjectFile(r.path, r.log)
		if r.loadErr == nil {
			r.log.Debug("Loaded chain configuration", "path", r.path, "chains", len(r.file.Chains))
		}
	})
	return r.file, r.loadErr
}

// Chains returns the configured chain names in ascending order
func (r *Resolver) Chains() []string {
	file, err := r.load()
	if err != nil {
		return nil
	}
	return domain.SortedKeys(file.Chains)
}

// Resolve returns the merged configuration of a chain
func (r *Resolver) Resolve(chain string) (*domain.ChainConfig, error) {
	file, err := r.load()
	if err != nil {
		return nil, err
	}

	section, ok := file.Chains[chain]
	if !ok {
		return nil, &domain.ConfigNotFoundError{
			Chain:       chain,
			Suggestions: closest(chain, domain.SortedKeys(file.Chains)),
		}
	}

	if err := r.validate.Struct(section); err != nil {
		return nil, fmt.Errorf("%w: chain %s: %s", domain.ErrInvalidConfig, chain, formatValidation(err))
	}

	profileSection, ok := file.Profiles[section.Profile]
	if !ok {
		return nil, fmt.Errorf("%w: chain %s uses unknown profile %q", domain.ErrInvalidConfig, chain, section.Profile)
	}
	if err := r.validate.Struct(profileSection); err != nil {
		return nil, fmt.Errorf("%w: profile %s: %s", domain.ErrInvalidConfig, section.Profile, formatValidation(err))
	}

	adminHex := firstNonEmpty(profileSection.Admin, file.Common.Admin)
	if adminHex == "" {
		return nil, fmt.Errorf("%w: no admin for chain %s (set profiles.%s.admin or common.admin)", domain.ErrInvalidConfig, chain, section.Profile)
	}
	if !common.IsHexAddress(adminHex) {
		return nil, fmt.Errorf("%w: invalid admin address %q", domain.ErrInvalidConfig, adminHex)
	}
	admin := common.HexToAddress(adminHex)

	settle, err := duration(firstNonEmpty(section.SettleDelay, file.Common.SettleDelay), DefaultSettleDelay)
	if err != nil {
		return nil, fmt.Errorf("%w: chain %s settle_delay: %v", domain.ErrInvalidConfig, chain, err)
	}
	confirm, err := duration(firstNonEmpty(section.ConfirmTimeout, file.Common.ConfirmTimeout), DefaultConfirmTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: chain %s confirm_timeout: %v", domain.ErrInvalidConfig, chain, err)
	}

	cfg := &domain.ChainConfig{
		Name:    chain,
		ChainID: section.ChainID,
		RPCURL:  section.RPCURL,
		Product: section.Product,
		Profile: domain.ChainProfile{
			Name:         section.Profile,
			Admin:        admin,
			Verification: domain.VerificationProtocol(profileSection.Verification),
			ExplorerURL:  profileSection.ExplorerURL,
			VerifierURL:  profileSection.VerifierURL,
			APIKey:       profileSection.APIKey,
		},
		Salt:           firstNonEmpty(section.Salt, file.Common.Salt),
		SettleDelay:    settle,
		ConfirmTimeout: confirm,
		DeployerKey:    firstNonEmpty(section.DeployerKey, file.Common.DeployerKey),
		Components:     make(map[string]domain.ComponentFlags, len(section.Components)),
		Values:         make(map[string]any),
	}

	if cfg.Salt == "" {
		return nil, fmt.Errorf("%w: no salt for chain %s", domain.ErrInvalidConfig, chain)
	}
	for name, c := range section.Components {
		if len(cfg.Salt)+len(c.SaltSuffix) > maxSaltLength {
			return nil, fmt.Errorf("%w: salt of %s on %s exceeds %d bytes", domain.ErrInvalidConfig, name, chain, maxSaltLength)
		}
		cfg.Components[name] = domain.ComponentFlags{
			Enabled:    c.Enabled,
			AutoVerify: c.AutoVerify,
			Variant:    c.Variant,
			SaltSuffix: c.SaltSuffix,
		}
	}
	if len(cfg.Salt) > maxSaltLength {
		return nil, fmt.Errorf("%w: salt of chain %s exceeds %d bytes", domain.ErrInvalidConfig, chain, maxSaltLength)
	}

	// chain values override common values key by key
	for k, v := range file.Common.Values {
		cfg.Values[k] = v
	}
	for k, v := range section.Values {
		cfg.Values[k] = v
	}
	cfg.Values["admin"] = admin.Hex()

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func duration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}

func closest(name string, candidates []string) []string {
	matches := fuzzy.Find(name, candidates)
	var out []string
	for i, m := range matches {
		if i == 3 {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

func formatValidation(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
