package cli

import (
	"github.com/spf13/cobra"
)

// NewTemplatesCommand creates the templates command group.
func NewTemplatesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage message templates",
	}

	cmd.AddCommand(&cobra.Command{
		Use:          "list",
		Short:        "List message templates",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			templates, err := st.ListTemplates()
			if err != nil {
				return err
			}
			return printJSON(cmd, templates)
		},
	})

	return cmd
}
