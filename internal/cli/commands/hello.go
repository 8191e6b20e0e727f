package commands

import (
	"github.com/leapstack-labs/djhelper/internal/cli/output"
	"github.com/spf13/cobra"
)

// HelloMessage is the greeting shown by the hello command.
const HelloMessage = "Hello World from djhelper!"

// NewHelloCommand creates the hello command.
func NewHelloCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "hello",
		Aliases: []string{"helloWorld"},
		Short:   "Show a greeting",
		Long:    `Show an information notification confirming djhelper is installed.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := NewCommandContext(cmd).Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(map[string]string{"message": HelloMessage})
			}
			r.Info(HelloMessage)
			return nil
		},
	}
}
