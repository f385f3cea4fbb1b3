package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// Confirm prompts for a yes/no answer. An aborted prompt (n, Ctrl+C,
// EOF) answers no; only the interrupt is surfaced as an error so
// callers can stop a multi-step flow.
func Confirm(prompt string, defaultYes bool) (bool, error) {
	label := prompt
	if defaultYes {
		label += " [Y/n]"
	} else {
		label += " [y/N]"
	}

	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if defaultYes {
		p.Default = "y"
	}

	result, err := p.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}

	result = strings.ToLower(strings.TrimSpace(result))
	if result == "" {
		return defaultYes, nil
	}
	return result == "y" || result == "yes", nil
}

// Select prompts the user to pick one item, returning its index and
// value. A single item is returned without prompting.
func Select(label string, items []string) (int, string, error) {
	if len(items) == 0 {
		return 0, "", fmt.Errorf("nothing to select from")
	}
	if len(items) == 1 {
		return 0, items[0], nil
	}

	p := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
	}
	return p.Run()
}
