// Package cli implements the enhancectl command tree.
package cli

import (
	"time"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Addr    string
	Timeout time.Duration
}

// NewRootCommand creates the root command for enhancectl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "enhancectl",
		Short: "Client for the conditioning enhancement service",
		Long: `Send conditioning collections to the enhancement service, or run the
pipeline locally, and manage parameter presets.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Addr, "addr", "localhost:50051", "enhancement service address")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "per-request timeout")

	cmd.AddCommand(NewEnhanceCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewDefaultsCommand(opts))

	return cmd
}
