package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/shopfloor-go/internal/application/session"
	"github.com/andrescamacho/shopfloor-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage Shopfloor CLI configuration settings.

Configuration is loaded from multiple sources with priority:
1. Command line flags (--server, --token, --product)
2. User preferences (~/.shopfloor/config.yaml)
3. Environment variables (SF_* prefix)
4. Config file (config.yaml)
5. Default values

User preferences never store tokens.

Examples:
  shopfloor config show
  shopfloor config set-product prod-1
  shopfloor config set-server http://shopfloor.local:8080/api/v1
  shopfloor config clear`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetProductCommand())
	cmd.AddCommand(newConfigSetServerCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			handler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}

			out := e.out
			fmt.Fprintln(out, "Shopfloor Configuration")
			fmt.Fprintln(out, "=======================")

			fmt.Fprintln(out, "User Preferences:")
			fmt.Fprintf(out, "  Config file:      %s\n", handler.GetConfigPath())
			fmt.Fprintf(out, "  Default Product:  %s\n", orNotSet(e.user.DefaultProductID))
			fmt.Fprintf(out, "  Server URL:       %s\n", orNotSet(e.user.ServerURL))

			fmt.Fprintln(out, "\nServer API:")
			fmt.Fprintf(out, "  Base URL:         %s\n", e.cfg.Client.BaseURL)
			fmt.Fprintf(out, "  Timeout:          %s\n", e.cfg.Client.Timeout)
			fmt.Fprintf(out, "  Rate Limit:       %d req/s (burst: %d)\n",
				e.cfg.Client.RateLimit.Requests, e.cfg.Client.RateLimit.Burst)
			fmt.Fprintf(out, "  Poll Interval:    %s\n", e.cfg.Client.PollInterval)
			if e.session.Authenticated() {
				fmt.Fprintf(out, "  Token:            set\n")
			} else {
				fmt.Fprintf(out, "  Token:            (not set)\n")
			}

			fmt.Fprintln(out, "\nLogging:")
			fmt.Fprintf(out, "  Level:            %s\n", e.cfg.Logging.Level)
			fmt.Fprintf(out, "  Format:           %s\n", e.cfg.Logging.Format)
			return nil
		},
	}
}

func newConfigSetProductCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-product <product-id>",
		Short: "Set the default product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := handler.SetDefaultProduct(args[0]); err != nil {
				return fmt.Errorf("failed to set default product: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Default product set to %s\n", args[0])
			return nil
		},
	}
}

func newConfigSetServerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-server <url>",
		Short: "Set the server API URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := url.Parse(args[0])
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("invalid server URL %q", args[0])
			}
			handler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := handler.SetServerURL(args[0]); err != nil {
				return fmt.Errorf("failed to set server URL: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Server URL set to %s\n", args[0])
			return nil
		},
	}
}

func newConfigClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all user preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := handler.Clear(); err != nil {
				return fmt.Errorf("failed to clear user config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ User preferences cleared")
			return nil
		},
	}
}

// NewWhoamiCommand shows the identity carried by the configured token
func NewWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity and permissions of the configured token",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			if !e.session.Authenticated() {
				return session.ErrNotAuthenticated
			}
			fmt.Fprintf(e.out, "Actor:        %s\n", orNotSet(e.session.Actor()))
			fmt.Fprintf(e.out, "Can write:    %t\n", e.session.Can(session.PermissionProductionWrite))
			return nil
		},
	}
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
