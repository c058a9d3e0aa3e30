package trust

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
)

// TerminalPrompter provides interactive terminal prompting for model trust.
type TerminalPrompter struct{}

// NewTerminalPrompter creates a new TerminalPrompter.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{}
}

// IsInteractive checks if we're running in an interactive terminal.
func (p *TerminalPrompter) IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// PromptForModel asks the user to trust a model identity.
func (p *TerminalPrompter) PromptForModel(req Request) (granted bool, always bool, err error) {
	const (
		OptionYes    = "Yes, trust for this session"
		OptionAlways = "Always trust (save to config)"
		OptionNo     = "No, deny"
	)

	desc := fmt.Sprintf("Model: %s\nDigest: %s", req.Model, req.Digest.Short())
	if req.Origin != "" {
		desc += fmt.Sprintf("\nOrigin: %s", req.Origin)
	}

	var selection string

	err = huh.NewSelect[string]().
		Title("Unknown Model Identity").
		Description(desc).
		Options(
			huh.NewOption(OptionYes, OptionYes),
			huh.NewOption(OptionAlways, OptionAlways),
			huh.NewOption(OptionNo, OptionNo),
		).
		Value(&selection).
		Run()
	if err != nil {
		return false, false, err
	}

	switch selection {
	case OptionYes:
		return true, false, nil
	case OptionAlways:
		return true, true, nil
	default:
		return false, false, nil
	}
}

// FormatNonInteractiveError creates a helpful error message for non-interactive mode.
func (p *TerminalPrompter) FormatNonInteractiveError(req Request) error {
	return fmt.Errorf(
		"model %q (%s) is not trusted (running in non-interactive mode)\n\n"+
			"To trust this model:\n"+
			"  1. Run interactively and approve when prompted\n"+
			"  2. Use the trust-all option (trusts every model)\n"+
			"  3. Manually edit: ~/.zkinfer/trusted_models.yaml",
		req.Model, req.Digest.Short())
}
