package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/yasmramos/forge/internal/core/domain"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			incremental, _ := cmd.Flags().GetBool("incremental")

			var result *domain.BuildResult
			var err error
			if incremental {
				result, err = c.app.BuildIncremental(cmd.Context())
			} else {
				result, err = c.app.Build(cmd.Context())
			}
			if err != nil {
				return err
			}

			printResult(cmd, result)
			if !result.Success {
				return domain.ErrBuildFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolP("incremental", "i", false, "Rebuild only changed sources and their dependents (build.incremental in forge.yaml sets the default)")
	return cmd
}

func printResult(cmd *cobra.Command, result *domain.BuildResult) {
	out := cmd.OutOrStdout()
	comp := result.Compilation

	_, _ = fmt.Fprintf(out, "compiled %d, cached %d, failed %d (of %d) in %s\n",
		comp.CompiledFiles, comp.CachedFiles, comp.FailedFiles, comp.TotalFiles,
		result.Duration.Round(time.Millisecond))

	if result.Test != nil && result.Test.TotalTests > 0 {
		_, _ = fmt.Fprintf(out, "tests: %d/%d passed\n", result.Test.PassedTests, result.Test.TotalTests)
	}

	if len(comp.Failures) == 0 {
		return
	}
	paths := make([]string, 0, len(comp.Failures))
	for path := range comp.Failures {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	errOut := cmd.ErrOrStderr()
	for _, path := range paths {
		_, _ = fmt.Fprintf(errOut, "%s: %s\n", path, comp.Failures[path])
	}
}
