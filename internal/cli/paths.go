package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewPathsCommand creates the paths command.
func NewPathsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "paths",
		Short:        "List registered module paths",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadInstance(cmd.Context(), rootOpts, cmd)
			if err != nil {
				return err
			}
			defer v.Destroy(cmd.Context())

			paths := v.Paths()
			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				if paths == nil {
					paths = []string{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(paths)
			}
			for _, path := range paths {
				fmt.Fprintln(out, path)
			}
			return nil
		},
	}
}
