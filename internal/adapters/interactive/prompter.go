package interactive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/catapult/internal/config"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// ErrNonInteractive is returned when a prompt is needed but the session cannot show one
var ErrNonInteractive = errors.New("interactive prompt not available in non-interactive mode")

// Prompter asks the user for confirmations and selections on the terminal
type Prompter struct {
	config *config.RuntimeConfig
}

var _ usecase.Confirmer = (*Prompter)(nil)

// NewPrompter creates a new terminal prompter
func NewPrompter(cfg *config.RuntimeConfig) *Prompter {
	return &Prompter{config: cfg}
}

// Confirm asks a yes/no question. Non-interactive sessions cannot confirm
// and must pass --yes instead.
func (p *Prompter) Confirm(ctx context.Context, label string) (bool, error) {
	if p.config.NonInteractive {
		return false, fmt.Errorf("%w: pass --yes to deploy without confirmation", ErrNonInteractive)
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	case errors.Is(err, promptui.ErrInterrupt):
		return false, domain.ErrAborted
	default:
		return false, err
	}
}

// SelectChain lets the user pick one of the configured chains
func (p *Prompter) SelectChain(ctx context.Context, chains []domain.ChainSummary) (string, error) {
	if p.config.NonInteractive {
		return "", fmt.Errorf("%w: specify the chain", ErrNonInteractive)
	}
	if len(chains) == 0 {
		return "", fmt.Errorf("no chains configured")
	}
	if len(chains) == 1 {
		return chains[0].Name, nil
	}

	options := formatChainOptions(chains)
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, / to search, Enter to select"),
	}

	selector := promptui.Select{
		Label:     "Select chain",
		Items:     options,
		Templates: templates,
		Size:      10,
		Searcher:  fuzzySearcher(chainNames(chains)),
	}

	index, _, err := selector.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}
	return chains[index].Name, nil
}

// formatChainOptions renders "base (8453) core/etherscan"
func formatChainOptions(chains []domain.ChainSummary) []string {
	options := make([]string, len(chains))
	for i, chain := range chains {
		name := color.New(color.FgWhite, color.Bold).Sprint(chain.Name)
		detail := color.New(color.FgBlue).Sprintf("%s/%s", chain.Product, chain.Profile)
		options[i] = fmt.Sprintf("%s (%d) %s", name, chain.ChainID, detail)
	}
	return options
}

func chainNames(chains []domain.ChainSummary) []string {
	names := make([]string, len(chains))
	for i, chain := range chains {
		names[i] = chain.Name
	}
	return names
}

// fuzzySearcher matches the typed input against the plain item names
func fuzzySearcher(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])
		if strings.Contains(item, input) {
			return true
		}
		return len(fuzzy.Find(input, []string{item})) > 0
	}
}
