package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/keshon/chatlight/internal/light"
	"github.com/spf13/cobra"
)

func newUsageCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "usage [keyword]",
		Short: "Print the usage line for all commands or one keyword",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema := light.DefaultSchema()
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), light.TopLevelUsage(st.cfg.Prefix, schema))
				return nil
			}
			def, ok := schema.Lookup(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", light.ErrUnknownCommand, args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), light.Usage(st.cfg.Prefix, def))
			return nil
		},
	}
}

func newCommandsCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the command table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEYWORD\tALIASES\tARITY\tMETHOD\tUSAGE")
			for _, def := range light.DefaultSchema().Definitions() {
				aliases := strings.Join(def.Aliases, ",")
				if aliases == "" {
					aliases = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", def.Name, aliases, def.Arity, def.Method, light.Usage(st.cfg.Prefix, def))
			}
			return w.Flush()
		},
	}
}
