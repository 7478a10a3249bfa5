package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/narrative/pkg/graph"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for narrative and print it.

Besides commands and flags, the scripts complete --view, --format and
--cache values and the edges of a result file passed to query.

  $ source <(narrative completion bash)
  $ narrative completion zsh > "${fpath[1]}/_narrative"
  $ narrative completion fish > ~/.config/fish/completions/narrative.fish
  PS> narrative completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}

	return cmd
}

// completeValues registers fixed completions for flag.
func completeValues(cmd *cobra.Command, flag string, values ...string) {
	_ = cmd.RegisterFlagCompletionFunc(flag, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
}

// completeEdges completes the second argument of query with the tree
// edges of the result file named by the first.
func completeEdges(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return nil, cobra.ShellCompDirectiveDefault
	case 1:
	default:
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	res, err := graph.ReadResultFile(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var edges []string
	for _, e := range res.Edges() {
		if s := e.String(); strings.HasPrefix(s, toComplete) {
			edges = append(edges, s)
		}
	}
	return edges, cobra.ShellCompDirectiveNoFileComp
}
