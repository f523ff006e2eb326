package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SyedDaiam9101/conditioning-service/internal/enhance"
	"github.com/SyedDaiam9101/conditioning-service/internal/preset"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <preset>",
		Short: "Check a parameter preset against the schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := preset.LoadFile(args[0], enhance.DefaultParameters()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid\n", args[0])
			return nil
		},
	}
}
