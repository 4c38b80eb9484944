// Package cli wires the records engine into a command-line surface for
// local administration: record CRUD, alert scanning, tag suggestions, and
// backup export/import.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kenisa/raai/internal/store"
	"github.com/kenisa/raai/internal/vault"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	DataDir string
	Verbose bool
}

// NewRootCommand creates the root command for the raai CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "raai",
		Short: "Congregation records engine",
		Long:  "Manage member records, confession logs, message templates and derived alerts.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.Verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", defaultDataDir(), "directory holding the engine image")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewMembersCommand(opts))
	cmd.AddCommand(NewLogsCommand(opts))
	cmd.AddCommand(NewTemplatesCommand(opts))
	cmd.AddCommand(NewAlertsCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewTagsCommand(opts))

	return cmd
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".raai"
	}
	return filepath.Join(home, ".raai")
}

// openStore boots the engine from the data directory, restoring the saved
// image or seeding a fresh one.
func openStore(opts *RootOptions) (*store.Store, error) {
	v, err := vault.New(afero.NewOsFs(), opts.DataDir)
	if err != nil {
		return nil, err
	}
	return store.Initialize(v)
}

// printJSON writes v to the command's stdout as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// decodeJSONArg parses a JSON document supplied on the command line.
func decodeJSONArg(doc string, into any) error {
	if err := json.Unmarshal([]byte(doc), into); err != nil {
		return fmt.Errorf("invalid JSON document: %w", err)
	}
	return nil
}
