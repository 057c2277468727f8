package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "mergeflow",
	Short: "Personalized documents, PDFs and mail from a recipient table",
	Long: `mergeflow merges a template with every row of a recipient table.

It creates one document and one PDF per recipient, sends each recipient a
personalized message, tracks delivery status, and cleans up generated files
nobody references anymore.

Typical flow:
  mergeflow validate
  mergeflow docs create
  mergeflow pdfs create
  mergeflow send
  mergeflow bounces poll`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. Errors are printed by the printer
// package, so cobra's own output is silenced.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	// Interrupting a batch leaves processed recipients updated.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func SetVersionInfo(v, c, d string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $MERGEFLOW_CONFIG or mergeflow.yaml)")
}
