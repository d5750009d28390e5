package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	serverURL  string
	token      string
	productID  string
	jsonOutput bool
	noColor    bool
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shopfloor",
		Short: "Shopfloor CLI - Plan and register production",
		Long: `Shopfloor CLI drives the production task lifecycle on a shopfloor server:
create and schedule tasks, register output, distribute production across
the queue and inspect the planning board.

Examples:
  shopfloor task create --product prod-1 --quantity 50 --start 2025-03-10 --end 2025-03-12
  shopfloor task register <task-id> --quality 48 --defect 2
  shopfloor task complete <task-id> --quality 50
  shopfloor production bulk sheet.yaml
  shopfloor board
  shopfloor gantt --from 2025-03-10 --days 14
  shopfloor reorder --move 3:0
  shopfloor plan overlaps --start 2025-03-10 --end 2025-03-12 --alternatives`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config.yaml (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "",
		"Server API URL (overrides config and user preferences)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "",
		"Bearer token (default: SF_CLIENT_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&productID, "product", "",
		"Product ID (default: user preference)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Print raw JSON instead of tables")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	// Add command groups
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewWhoamiCommand())
	rootCmd.AddCommand(NewTaskCommand())
	rootCmd.AddCommand(NewProductionCommand())
	rootCmd.AddCommand(NewBoardCommand())
	rootCmd.AddCommand(NewGanttCommand())
	rootCmd.AddCommand(NewWatchCommand())
	rootCmd.AddCommand(NewReorderCommand())
	rootCmd.AddCommand(NewPlanCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}
