package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// VerifyRenderer handles rendering of verification results
type VerifyRenderer struct {
	out    io.Writer
	format Format
}

// NewVerifyRenderer creates a new verify renderer
func NewVerifyRenderer(out io.Writer, format Format) *VerifyRenderer {
	return &VerifyRenderer{out: out, format: format}
}

func (r *VerifyRenderer) Render(result *usecase.VerifyComponentsResult) error {
	switch r.format {
	case FormatJSON:
		return writeJSON(r.out, result)
	case FormatYAML:
		return writeYAML(r.out, result)
	}

	if len(result.Skipped) > 0 {
		color.New(color.FgCyan, color.Bold).Fprintf(r.out, "Skipping %d components:\n", len(result.Skipped))
		for _, name := range domain.SortedKeys(result.Skipped) {
			fmt.Fprintf(r.out, "  ⏭️  %s (%s)\n", name, result.Skipped[name])
		}
		fmt.Fprintln(r.out)
	}

	if len(result.Results) == 0 {
		color.New(color.FgYellow).Fprintln(r.out, "Nothing to verify. Use --force to re-verify verified components.")
		return nil
	}

	verified := 0
	for _, v := range result.Results {
		if v.Verified {
			verified++
			fmt.Fprintf(r.out, "  %s %s %s\n", verifiedLabel(true), nameStyle.Sprint(v.Component), faintStyle.Sprint(v.URL))
			continue
		}
		fmt.Fprintf(r.out, "  %s %s\n", verifiedLabel(false), nameStyle.Sprint(v.Component))
		failedStyle.Fprintf(r.out, "    %s (after %d attempts)\n", v.Reason, v.Attempts)
	}

	fmt.Fprintf(r.out, "\nVerification complete: %d/%d successful\n", verified, len(result.Results))
	return nil
}
