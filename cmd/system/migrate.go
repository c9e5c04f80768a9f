package system

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/oilcall_backend/config"
	"github.com/Alijeyrad/oilcall_backend/internal/store/sqlstore"
	"github.com/Alijeyrad/oilcall_backend/pkg/database"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema and job number sequence",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}
			if strings.EqualFold(cfg.Database.Driver, config.DriverMemory) {
				return errors.New("database.driver is memory; nothing to migrate")
			}

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			fmt.Println("Running migrations.")
			drv, err := database.OpenDriver(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer drv.Close()

			if err := sqlstore.Migrate(ctx, drv, cfg.JobNumber.Start); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			fmt.Println("Migrations executed successfully.")
			return nil
		},
	}

	return cmd
}
