// File: cmd/login.go
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riku-sakamoto/manabo-cli/api/schemas"
	"github.com/riku-sakamoto/manabo-cli/internal/observability"
)

// newLoginCmd creates and configures the `login` command.
func newLoginCmd() *cobra.Command {
	var username, password string

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Runs the portal login handshake and persists the session state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			components, err := buildEngine(ctx, appConfig, logger)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			if username != "" || password != "" {
				components.Sessions.SetCredentials(schemas.Credentials{
					Username: username,
					Password: password,
				})
			}

			// A login command means the user wants a fresh handshake, not a
			// restored state.
			components.Sessions.Invalidate()

			if _, err := components.Sessions.EnsureSession(ctx); err != nil {
				var authErr *schemas.AuthError
				if errors.As(err, &authErr) && authErr.Remediation != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Login failed: %s.\nHint: %s\n", authErr.Reason, authErr.Remediation)
				}
				return err
			}

			logger.Info("Login succeeded; session state persisted.",
				zap.String("state_file", appConfig.Portal.StateFile))
			fmt.Fprintln(cmd.OutOrStdout(), "Login succeeded.")
			return nil
		},
	}

	loginCmd.Flags().StringVarP(&username, "username", "u", "", "portal username (falls back to CHUKYO_USERNAME)")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "portal password (falls back to CHUKYO_PASSWORD)")
	return loginCmd
}
