package tui

import "github.com/charmbracelet/huh"

// Confirm asks a yes/no question on the terminal. It defaults to no.
func Confirm(title, description, affirmative string) (bool, error) {
	var ok bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative(affirmative).
				Negative("No, cancel").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}
