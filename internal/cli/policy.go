package cli

import (
	"github.com/spf13/cobra"
)

// newPolicyCommand groups policy subcommands.
func newPolicyCommand(opts *Options) *cobra.Command {
	return newGroupCommand("policy", "Inspect the action policy",
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective policy",
			Long:  "Prints the policy that suggest and review would apply. A missing or invalid file yields the empty policy, which rejects every action.",
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := loadApp(cmd, opts)
				if err != nil {
					return err
				}
				a.console.Policy(a.policyPath, a.policy)
				return nil
			},
		},
	)
}
