package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kenisa/raai/internal/store"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:          "export",
		Short:        "Write the engine image to a backup file",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			data, err := st.SerializeImage()
			if err != nil {
				return err
			}

			if out == "" {
				out = store.ExportFilename(time.Now())
			}
			if err := os.WriteFile(out, data, 0600); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", len(data), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "backup file path (default kenisa-backup-<date>.db)")
	return cmd
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the engine with a backup image",
		Long: `Replace the live engine with an image previously written by export.
The file is validated before anything is replaced; on any failure the
current records are kept untouched.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.ImportImage(data); err != nil {
				return err
			}
			n, err := st.CountMembers()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported image with %d members\n", n)
			return nil
		},
	}
}
