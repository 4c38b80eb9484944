package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kenisa/raai/internal/store"
)

// NewLogsCommand creates the logs command group.
func NewLogsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Manage confession logs",
	}

	cmd.AddCommand(newLogsListCommand(rootOpts))
	cmd.AddCommand(newLogsAddCommand(rootOpts))

	return cmd
}

func newLogsListCommand(rootOpts *RootOptions) *cobra.Command {
	var memberID int64

	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List confession logs, newest first",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			var logs []*store.Log
			if memberID > 0 {
				logs, err = st.LogsForMember(memberID)
			} else {
				logs, err = st.ListLogs()
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, logs)
		},
	}

	cmd.Flags().Int64Var(&memberID, "member", 0, "restrict to one member's logs")
	return cmd
}

func newLogsAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <member-id> <json>",
		Short: "Record a confession log for a member",
		Long: `Record a confession log. The document may carry date, notes and tags:

  raai logs add 12 '{"date":"2026-09-01","notes":"...","tags":["general"]}'`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			var l store.Log
			if err := decodeJSONArg(args[1], &l); err != nil {
				return err
			}
			l.MemberID = memberID

			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.InsertLog(&l); err != nil {
				return err
			}
			return printJSON(cmd, &l)
		},
	}
}
