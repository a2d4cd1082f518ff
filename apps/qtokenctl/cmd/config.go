package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration (secrets masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := GetConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Print(func(format string, args ...interface{}) {
				fmt.Fprintf(cmd.OutOrStdout(), format, args...)
			})
			return nil
		},
	}
}
