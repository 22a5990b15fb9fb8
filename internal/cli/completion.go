package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for beeswarm.

Bash:
  $ source <(beeswarm completion bash)

Zsh:
  $ beeswarm completion zsh > "${fpath[1]}/_beeswarm"

Fish:
  $ beeswarm completion fish > ~/.config/fish/completions/beeswarm.fish

PowerShell:
  PS> beeswarm completion powershell | Out-String | Invoke-Expression
`,
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
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// flagChoices lists the fixed values offered for enumerated flags.
var flagChoices = map[string][]cobra.Completion{
	"overflow": {
		cobra.CompletionWithDesc("gutters", "clip overflowing points to the lane edges"),
		cobra.CompletionWithDesc("shrink", "shrink all radii until the swarm fits"),
		cobra.CompletionWithDesc("random", "scatter overflowing points inside the lane"),
	},
	"orient":         {"x", "y"},
	"value-scale":    {"linear", "log"},
	"category-scale": {"linear", "log"},
	"format":         {"svg", "png", "json"},
}

// registerFlagCompletions attaches value completions for every enumerated
// flag cmd defines.
func registerFlagCompletions(cmd *cobra.Command) {
	for name, choices := range flagChoices {
		if cmd.Flags().Lookup(name) == nil {
			continue
		}
		_ = cmd.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(choices, cobra.ShellCompDirectiveNoFileComp))
	}
}
