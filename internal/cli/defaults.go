package cli

import (
	"github.com/spf13/cobra"

	"github.com/SyedDaiam9101/conditioning-service/internal/enhance"
	"github.com/SyedDaiam9101/conditioning-service/internal/preset"
)

// NewDefaultsCommand creates the defaults command, which prints the default
// parameters as a YAML preset.
func NewDefaultsCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the default parameters as a YAML preset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := preset.Marshal(enhance.DefaultParameters())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
