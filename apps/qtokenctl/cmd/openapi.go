package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/quatton/qtoken/pkg/qapi"
	"github.com/quatton/qtoken/pkg/qapi/routes"
	"github.com/spf13/cobra"
)

func newOpenAPICmd() *cobra.Command {
	var (
		output    string
		downgrade bool
	)
	cmd := &cobra.Command{
		Use:     "openapi",
		Aliases: []string{"spec"},
		Short:   "Generate the OpenAPI specification of the serve API",
		Long:    `Outputs the OpenAPI specification for 'qtokenctl serve' without connecting to the token store.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api := qapi.NewApi()
			routes.RegisterAPI(api.Api, nil)

			var (
				spec []byte
				err  error
			)
			if downgrade {
				spec, err = api.Api.OpenAPI().Downgrade()
			} else {
				spec, err = json.Marshal(api.Api.OpenAPI())
			}
			if err != nil {
				return fmt.Errorf("generating OpenAPI spec: %w", err)
			}

			if output == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(spec))
				return err
			}
			if err := os.WriteFile(output, spec, 0o644); err != nil {
				return fmt.Errorf("writing OpenAPI spec to %s: %w", output, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write output to file (default stdout)")
	cmd.Flags().BoolVar(&downgrade, "downgrade", true, "Downgrade OpenAPI to 3.0 when generating the spec")
	return cmd
}
