package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	vuet "github.com/goliatone/go-vuet"
)

// NewStateCommand creates the state command.
func NewStateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "state [path]",
		Short: "Print the state produced by registration",
		Long: `Print the initial store built from the module declarations.

With a path argument only that entry is printed. Unset paths print an
empty object.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadInstance(cmd.Context(), rootOpts, cmd)
			if err != nil {
				return err
			}
			defer v.Destroy(cmd.Context())

			if len(args) == 1 {
				return writeJSON(cmd, v.GetState(args[0]))
			}
			return printState(cmd, v, rootOpts.Format)
		},
	}
}

// printState writes the whole store, one path per line in text format.
func printState(cmd *cobra.Command, v *vuet.Vuet, format string) error {
	snapshot := v.Store().Snapshot()
	if format == "json" {
		return writeJSON(cmd, snapshot)
	}
	out := cmd.OutOrStdout()
	for _, path := range v.Paths() {
		data, err := json.Marshal(snapshot[path])
		if err != nil {
			return fmt.Errorf("encode %q: %w", path, err)
		}
		fmt.Fprintf(out, "%s\t%s\n", path, data)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
