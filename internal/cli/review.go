package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/knightmare-26/jira-cli/internal/action"
	"github.com/knightmare-26/jira-cli/internal/pipeline"
)

// newReviewCommand creates "review", which replays a saved suggestion document through the
// policy filter and the approval loop.
func newReviewCommand(opts *Options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review and execute actions from a saved suggestion document",
		Example: "  jira-ai suggest --pr 42 --no-review --output actions.json\n" +
			"  jira-ai review --file actions.json",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readDocument(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			actions, err := action.DecodeDocument(data)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}

			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			a.console.Banner(fmt.Sprintf("Reviewing %d action(s) from %s", len(actions), file))

			// Saved documents may have been edited by hand, so the policy applies again.
			admitted, rejected := pipeline.Filter(actions, a.policy)
			a.console.Rejections(rejected)
			a.reviewActions(cmd.Context(), admitted)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Suggestion document to review (\"-\" reads stdin)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func readDocument(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
