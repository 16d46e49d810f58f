package cmd

import (
	"context"

	"github.com/manifoldco/promptui"
)

// promptOperator asks the person at the vehicle on the terminal
type promptOperator struct{}

func (p *promptOperator) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	prompt := promptui.Select{
		Label:    question + " [Yes/No]",
		HideHelp: true,
		Items:    []string{"Yes", "No"},
	}
	_, result, err := prompt.Run()
	if err != nil {
		return false, err
	}
	return result == "Yes", nil
}
