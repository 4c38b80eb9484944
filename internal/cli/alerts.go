package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kenisa/raai/internal/alerts"
	"github.com/kenisa/raai/internal/store"
)

// NewAlertsCommand creates the alerts command.
func NewAlertsCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		date     string
		watch    bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Scan for birthday, anniversary and overdue-confession alerts",
		Long: `Scan the record set against a calendar date (today by default) and print
the derived alerts. With --watch the scan repeats on an interval until
interrupted.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			load := func() ([]*store.Member, []*store.Log, error) {
				members, err := st.ListMembers()
				if err != nil {
					return nil, nil, err
				}
				logs, err := st.ListLogs()
				if err != nil {
					return nil, nil, err
				}
				return members, logs, nil
			}

			if watch {
				alerts.Watch(cmd.Context(), interval, load, func(found []*alerts.Alert) {
					_ = printJSON(cmd, found)
				})
				return nil
			}

			today := time.Now()
			if date != "" {
				today, err = time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", date, err)
				}
			}

			members, logs, err := load()
			if err != nil {
				return err
			}
			return printJSON(cmd, alerts.Scan(members, logs, today))
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "scan against this date instead of today (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&watch, "watch", false, "keep scanning on an interval")
	cmd.Flags().DurationVar(&interval, "interval", time.Hour, "re-scan interval with --watch")

	return cmd
}
