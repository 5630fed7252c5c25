package prompt

import (
	"github.com/pterm/pterm"

	"github.com/dob9601/jointhedots/pkg/errors"
	"github.com/dob9601/jointhedots/pkg/logging"
)

var log = logging.GetLogger("prompt")

// Terminal prompts interactively with pterm
type Terminal struct{}

// NewTerminal returns a Terminal prompter
func NewTerminal() *Terminal {
	return &Terminal{}
}

// Confirm asks a yes/no question
func (t *Terminal) Confirm(message string, defaultValue bool) (bool, error) {
	answer, err := pterm.DefaultInteractiveConfirm.
		WithDefaultText(message).
		WithDefaultValue(defaultValue).
		Show()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrInvalidInput, "could not read answer")
	}
	log.Debug().Str("question", message).Bool("answer", answer).Msg("Confirmed")
	return answer, nil
}

// MultiSelect lets the user pick any number of options
func (t *Terminal) MultiSelect(message string, options []string) ([]string, error) {
	if len(options) == 0 {
		return nil, nil
	}
	selected, err := pterm.DefaultInteractiveMultiselect.
		WithDefaultText(message).
		WithOptions(options).
		WithMaxHeight(len(options)).
		Show()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "could not read selection")
	}
	log.Debug().Strs("selected", selected).Msg("Selected")
	return selected, nil
}

// Input asks for a line of text, falling back to defaultValue when the
// answer is empty
func (t *Terminal) Input(message, defaultValue string) (string, error) {
	answer, err := pterm.DefaultInteractiveTextInput.
		WithDefaultText(message).
		WithDefaultValue(defaultValue).
		Show()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInvalidInput, "could not read input")
	}
	if answer == "" {
		return defaultValue, nil
	}
	return answer, nil
}

// Password asks for a secret without echoing it
func (t *Terminal) Password(message string) (string, error) {
	answer, err := pterm.DefaultInteractiveTextInput.
		WithDefaultText(message).
		WithMask("*").
		Show()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInvalidInput, "could not read password")
	}
	return answer, nil
}

// Select lets the user pick exactly one option
func (t *Terminal) Select(message string, options []string, defaultOption string) (string, error) {
	selected, err := pterm.DefaultInteractiveSelect.
		WithDefaultText(message).
		WithOptions(options).
		WithDefaultOption(defaultOption).
		Show()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInvalidInput, "could not read selection")
	}
	return selected, nil
}
