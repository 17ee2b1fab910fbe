package review

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/knightmare-26/jira-cli/internal/env"
)

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = errors.New("prompt aborted")

// FormPrompter asks questions with huh forms.
type FormPrompter struct {
	// Accessible switches huh to plain line-based prompts (screen readers, dumb terminals).
	Accessible bool
}

// NewFormPrompter enables accessible mode when ACCESSIBLE is set in vars.
func NewFormPrompter(vars env.Vars) *FormPrompter {
	return &FormPrompter{Accessible: strings.TrimSpace(vars["ACCESSIBLE"]) != ""}
}

// Confirm asks a yes/no question defaulting to no.
func (p *FormPrompter) Confirm(question string) (bool, error) {
	var ok bool
	field := huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)
	if err := p.run(huh.NewGroup(field)); err != nil {
		return false, err
	}
	return ok, nil
}

// Edit opens a multi-line editor pre-filled with current. Ctrl+E hands off to $EDITOR.
func (p *FormPrompter) Edit(title, current string) (string, error) {
	value := current
	field := huh.NewText().
		Title(title).
		Description("Ctrl+E opens $EDITOR").
		Lines(16).
		CharLimit(0).
		EditorExtension(".json").
		Value(&value)
	if err := p.run(huh.NewGroup(field)); err != nil {
		return "", err
	}
	return value, nil
}

func (p *FormPrompter) run(group *huh.Group) error {
	err := huh.NewForm(group).
		WithTheme(huh.ThemeDracula()).
		WithAccessible(p.Accessible).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	if err != nil {
		return fmt.Errorf("prompt: %w", err)
	}
	return nil
}
