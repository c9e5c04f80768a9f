package system

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/oilcall_backend/internal/service/reminder"
)

func NewSendRemindersCommand() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "send-reminders",
		Short: "Send the day-of reminders now instead of waiting for the scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}
			if date == "" {
				date = time.Now().In(cfg.Server.Location()).Format(time.DateOnly)
			} else if _, err := time.Parse(time.DateOnly, date); err != nil {
				return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
			}

			var rem *reminder.Reminder
			return withServices(cmd.Context(), cfg, func(ctx context.Context) error {
				sum, err := rem.RunOnce(ctx, date)
				if err != nil {
					return err
				}
				if sum.Skipped {
					fmt.Printf("Skipped %s: database schema is missing.\n", sum.Date)
					return nil
				}
				fmt.Printf("Reminders for %s: %d sent, %d failed.\n", sum.Date, sum.Sent, sum.Failed)
				return nil
			}, &rem)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date to remind for, YYYY-MM-DD (default today)")

	return cmd
}
