package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// Input shows a text prompt prefilled with value and returns the edited text.
func Input(title, value string) (string, error) {
	result := value
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(title).
				Value(&result).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("commit message cannot be empty")
					}
					return nil
				}),
		),
	).Run()
	return strings.TrimSpace(result), err
}

// Confirm shows a yes/no confirmation prompt.
func Confirm(message string) (bool, error) {
	var confirmed bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(message).
				Value(&confirmed),
		),
	).Run()
	return confirmed, err
}
