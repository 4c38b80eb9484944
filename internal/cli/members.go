package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kenisa/raai/internal/store"
)

// NewMembersCommand creates the members command group.
func NewMembersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage member records",
	}

	cmd.AddCommand(newMembersListCommand(rootOpts))
	cmd.AddCommand(newMembersAddCommand(rootOpts))
	cmd.AddCommand(newMembersUpdateCommand(rootOpts))
	cmd.AddCommand(newMembersDeleteCommand(rootOpts))

	return cmd
}

func newMembersListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "list",
		Short:        "List all members",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			members, err := st.ListMembers()
			if err != nil {
				return err
			}
			return printJSON(cmd, members)
		},
	}
}

func newMembersAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <json>",
		Short: "Add a member from a JSON document",
		Long: `Add a member record. The argument is a JSON document with camelCase
field names, for example:

  raai members add '{"firstName":"Mina","familyName":"Gerges","gender":"male"}'`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var m store.Member
			if err := decodeJSONArg(args[0], &m); err != nil {
				return err
			}

			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.InsertMember(&m); err != nil {
				return err
			}
			return printJSON(cmd, &m)
		},
	}
}

func newMembersUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <json>",
		Short: "Apply a partial update to a member",
		Long: `Update only the fields named in the JSON document, for example:

  raai members update 12 '{"phone1":"0100123456","isDeacon":true}'`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			var patch map[string]any
			if err := decodeJSONArg(args[1], &patch); err != nil {
				return err
			}

			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.UpdateMember(id, patch); err != nil {
				return err
			}
			m, err := st.GetMember(id)
			if err != nil {
				return err
			}
			return printJSON(cmd, m)
		},
	}
}

func newMembersDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "delete <id>",
		Short:        "Delete a member and all their confession logs",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}

			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			return st.DeleteMember(id)
		},
	}
}
