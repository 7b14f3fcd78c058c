package collector

import (
	"context"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// FormPrompter asks questions with huh forms.
type FormPrompter struct {
	accessible bool
}

// NewFormPrompter creates a prompter. When stdin is not a terminal the forms
// fall back to huh's line-based accessible mode.
func NewFormPrompter() *FormPrompter {
	fd := os.Stdin.Fd()
	return &FormPrompter{
		accessible: !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd),
	}
}

// Ask implements Prompter.
func (p *FormPrompter) Ask(ctx context.Context, q Question) (string, error) {
	var value string

	description := q.Description
	if q.Default != "" {
		description = "Press ENTER for the default (" + q.Default + ")"
	}

	input := huh.NewInput().
		Title(q.Title).
		Description(description).
		Placeholder(q.Default).
		Value(&value)
	if q.Validate != nil {
		input = input.Validate(q.Validate)
	}
	if q.Sensitive {
		input = input.EchoMode(huh.EchoModePassword)
	}

	err := huh.NewForm(huh.NewGroup(input)).
		WithAccessible(p.accessible).
		RunWithContext(ctx)
	if err != nil {
		return "", err
	}
	return value, nil
}

// Confirm implements Prompter.
func (p *FormPrompter) Confirm(ctx context.Context, title, description string, defaultYes bool) (bool, error) {
	confirmed := defaultYes

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	).WithAccessible(p.accessible).RunWithContext(ctx)
	if err != nil {
		return false, err
	}
	return confirmed, nil
}
