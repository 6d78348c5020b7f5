package commands

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *CLI) newDepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Resolve and list project dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolution, err := c.app.Deps(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, dep := range resolution.Dependencies() {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", dep.Name, dep.Version, dep.Type, dep.LocalPath)
			}
			_ = w.Flush()

			errs := resolution.Errors()
			if len(errs) == 0 {
				return nil
			}
			names := make([]string, 0, len(errs))
			for name := range errs {
				names = append(names, name)
			}
			sort.Strings(names)
			errOut := cmd.ErrOrStderr()
			for _, name := range names {
				_, _ = fmt.Fprintf(errOut, "%s: %s\n", name, errs[name])
			}
			return nil
		},
	}
}
