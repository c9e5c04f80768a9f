package system

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/oilcall_backend/internal/service/auth"
	"github.com/Alijeyrad/oilcall_backend/pkg/util/password"
)

func NewCreateManagerCommand() *cobra.Command {
	var req auth.CreateManagerRequest

	cmd := &cobra.Command{
		Use:   "create-manager",
		Short: "Create a manager account",
		Long: `Create a manager account. Managers are never created over the API.

When --password is omitted a random one is generated and printed once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}

			generated := req.Password == ""
			if generated {
				if req.Password, err = password.Generate(20); err != nil {
					return err
				}
			}

			var svc auth.Service
			return withServices(cmd.Context(), cfg, func(ctx context.Context) error {
				m, err := svc.CreateManager(ctx, req)
				if err != nil {
					return fmt.Errorf("failed to create manager: %w", err)
				}
				fmt.Printf("Manager %s created (%s).\n", m.Email, m.ID)
				if generated {
					fmt.Printf("Password: %s\n", req.Password)
				}
				return nil
			}, &svc)
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "manager e-mail, used to log in")
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password (generated when empty)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
