package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/kenisa/raai/internal/store"
	"github.com/kenisa/raai/internal/tagger"
)

// NewTagsCommand creates the tags command group.
func NewTagsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Work with the confession tag vocabulary",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "suggest <text>...",
		Short: "Suggest configured tags mentioned in note text",
		Long: `Match the configured confession tag vocabulary against free text and
print the tags it mentions, in order of first appearance:

  raai tags suggest "talked about her first confession and marriage plans"`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			vocab, err := st.Setting(store.SettingConfessionTags)
			if err != nil {
				return err
			}
			dict, err := tagger.Compile(vocab)
			if err != nil {
				return err
			}

			suggested := dict.Suggest(strings.Join(args, " "))
			return printJSON(cmd, suggested)
		},
	})

	return cmd
}
