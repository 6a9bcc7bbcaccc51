package render

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/trebuchet-org/catapult/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	headerStyle     = color.New(color.Bold, color.FgHiWhite)
	nameStyle       = color.New(color.FgWhite, color.Bold)
	addressStyle    = color.New(color.FgWhite)
	faintStyle      = color.New(color.Faint)
	deployedStyle   = color.New(color.FgGreen)
	reusedStyle     = color.New(color.FgCyan)
	failedStyle     = color.New(color.FgRed)
	skippedStyle    = color.New(color.FgYellow)
	verifiedStyle   = color.New(color.FgGreen)
	unverifiedStyle = color.New(color.FgRed)

	titleCase = cases.Title(language.English)
)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return color.New(color.FgYellow).Sprintf("⚠️  %s", message)
}

// FormatError formats an error message with the error icon
func FormatError(message string) string {
	if len(message) > 0 {
		message = strings.ToUpper(message[:1]) + message[1:]
	}
	return color.New(color.FgRed).Sprintf("❌ %s", message)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return color.New(color.FgGreen).Sprintf("✅ %s", message)
}

func statusLabel(status domain.ComponentStatus) string {
	label := titleCase.String(string(status))
	switch status {
	case domain.StatusDeployed:
		return deployedStyle.Sprint("✔ " + label)
	case domain.StatusReused:
		return reusedStyle.Sprint("↺ " + label)
	case domain.StatusFailed:
		return failedStyle.Sprint("✗ " + label)
	default:
		return skippedStyle.Sprint("⊘ " + label)
	}
}

func initLabel(status domain.InitStatus) string {
	label := titleCase.String(strings.ReplaceAll(string(status), "-", " "))
	switch status {
	case domain.InitSucceeded:
		return deployedStyle.Sprint("✔ " + label)
	case domain.InitAlreadyDone:
		return reusedStyle.Sprint("↺ " + label)
	case domain.InitFailed:
		return failedStyle.Sprint("✗ " + label)
	default:
		return skippedStyle.Sprint("⊘ " + label)
	}
}

func verifiedLabel(verified bool) string {
	if verified {
		return verifiedStyle.Sprint("✔")
	}
	return unverifiedStyle.Sprint("✗")
}

func formatAddress(addr common.Address) string {
	if addr == (common.Address{}) {
		return faintStyle.Sprint("-")
	}
	return addressStyle.Sprint(addr.Hex())
}

func orDash(s string) string {
	if s == "" {
		return faintStyle.Sprint("-")
	}
	return s
}
