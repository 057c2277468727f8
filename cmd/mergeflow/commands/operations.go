package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mergeflow/internal/campaign"
	"github.com/dmitrymomot/mergeflow/internal/printer"
	"github.com/dmitrymomot/mergeflow/internal/tasks"
	"github.com/dmitrymomot/mergeflow/pkg/template"
)

var (
	resetRows     []int
	resetStatuses []string
	orphanForce   bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report recipients missing required template fields",
	Args:  cobra.NoArgs,
	RunE:  operation(campaign.OpValidate, nil),
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Create or regenerate per-recipient documents",
}

var docsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create documents for valid recipients that have none",
	Long: `Create a document for every valid recipient without a DocId.

Recipients that already have a document are skipped, so an interrupted run
can simply be repeated.`,
	Args: cobra.NoArgs,
	RunE: operation(campaign.OpCreateDocs, nil),
}

var docsRegenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Rewrite existing documents from the current template",
	Long: `Rewrite the content of every existing document in place.

Each regenerated recipient's PdfId is cleared so the next "pdfs create"
renders a fresh PDF.`,
	Args: cobra.NoArgs,
	RunE: operation(campaign.OpRegenerateDocs, nil),
}

var pdfsCmd = &cobra.Command{
	Use:   "pdfs",
	Short: "Create or regenerate PDFs from documents",
}

var pdfsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Render a PDF for every document without one",
	Args:  cobra.NoArgs,
	RunE:  operation(campaign.OpCreatePDFs, nil),
}

var pdfsRegenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Render PDFs again for every document",
	Args:  cobra.NoArgs,
	RunE:  operation(campaign.OpRegeneratePDFs, nil),
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send the campaign message to every pending recipient",
	Args:  cobra.NoArgs,
	RunE:  operation(campaign.OpSend, nil),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Manage delivery status",
}

var statusResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Put sent, failed or bounced recipients back to pending",
	Example: `  mergeflow status reset --status failed
  mergeflow status reset --row 4 --row 9`,
	Args: cobra.NoArgs,
	RunE: operation(campaign.OpResetStatus, func(*cobra.Command, []string) (tasks.Payload, error) {
		return tasks.Payload{Rows: resetRows, Statuses: resetStatuses}, nil
	}),
}

var bouncesCmd = &cobra.Command{
	Use:   "bounces",
	Short: "Track bounced messages",
}

var bouncesPollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Mark sent recipients whose message bounced",
	Args:  cobra.NoArgs,
	RunE:  operation(campaign.OpPollBounces, nil),
}

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "Find and trash generated files no recipient references",
}

var orphansPreviewCmd = &cobra.Command{
	Use:   "preview documents|pdfs",
	Short: "List orphaned files without changing anything",
	Args:  cobra.ExactArgs(1),
	RunE:  operation(campaign.OpPreviewOrphans, trackPayload),
}

var orphansDeleteCmd = &cobra.Command{
	Use:   "delete documents|pdfs",
	Short: "Move orphaned files to the trash",
	Long: `Move every orphaned file of a track to the trash.

When the share of orphaned files exceeds campaign.orphan_threshold nothing is
deleted unless --force is given: a high ratio usually means a wrong location
or recipient ids lost from the table.`,
	Args: cobra.ExactArgs(1),
	RunE: operation(campaign.OpDeleteOrphans, trackPayload),
}

func trackPayload(_ *cobra.Command, args []string) (tasks.Payload, error) {
	if _, err := campaign.ParseTrack(args[0]); err != nil {
		return tasks.Payload{}, printer.Error("Unknown track", err.Error(), []string{
			`Use "documents" or "pdfs"`,
		})
	}
	return tasks.Payload{Track: args[0], Force: orphanForce}, nil
}

type payloadFunc func(cmd *cobra.Command, args []string) (tasks.Payload, error)

// operation builds a RunE executing op through a tasks.Runner and
// printing its result.
func operation(op campaign.Operation, payload payloadFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var p tasks.Payload
		if payload != nil {
			var err error
			if p, err = payload(cmd, args); err != nil {
				return err
			}
		}

		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.require(e.operationKeys(op, p)...); err != nil {
			return err
		}

		ctx := cmd.Context()
		c, err := e.build(ctx, op)
		if err != nil {
			return printer.Error("Cannot start "+string(op), err.Error(), nil)
		}

		out := cmd.OutOrStdout()
		printer.Step(out, "%s", op)
		res, err := c.runner(e.log).Execute(ctx, op, p)
		printer.Partition(out, res.Partition)
		printer.Run(out, res.Run)
		if err != nil {
			return printer.Error(strings.ToUpper(string(op[:1]))+string(op[1:])+" stopped", err.Error(), suggestions(err))
		}
		if res.Run != nil && res.Run.Failed > 0 {
			return fmt.Errorf("%s: %d recipients failed", op, res.Run.Failed)
		}
		return nil
	}
}

func suggestions(err error) []string {
	switch {
	case errors.Is(err, campaign.ErrSuspiciousOrphanRatio):
		return []string{
			"Check campaign.documents_location and campaign.pdfs_location",
			"Check that the recipient table still holds DocId and PdfId values",
			"Re-run with --force to delete anyway",
		}
	case errors.Is(err, template.ErrNotFound), errors.Is(err, campaign.ErrTemplateRead):
		return []string{"Check campaign.template and the templates section of the config"}
	case errors.Is(err, campaign.ErrRecipientsRead):
		return []string{"Check the recipients section of the config"}
	case errors.Is(err, campaign.ErrNoConverter):
		return []string{"Set gotenberg.url"}
	case errors.Is(err, campaign.ErrNoBounceChecker):
		return []string{"Configure the graph section", "Set mail.bounces to resend and configure mail.resend"}
	case errors.Is(err, campaign.ErrNoSender):
		return []string{"Configure mail.resend"}
	}
	return nil
}

func init() {
	statusResetCmd.Flags().IntSliceVar(&resetRows, "row", nil, "limit the reset to these data rows (1-based, repeatable)")
	statusResetCmd.Flags().StringSliceVar(&resetStatuses, "status", nil, "statuses to reset (default sent, failed and bounced)")
	orphansDeleteCmd.Flags().BoolVar(&orphanForce, "force", false, "delete even when the orphan ratio is above the threshold")

	docsCmd.AddCommand(docsCreateCmd, docsRegenerateCmd)
	pdfsCmd.AddCommand(pdfsCreateCmd, pdfsRegenerateCmd)
	statusCmd.AddCommand(statusResetCmd)
	bouncesCmd.AddCommand(bouncesPollCmd)
	orphansCmd.AddCommand(orphansPreviewCmd, orphansDeleteCmd)

	rootCmd.AddCommand(validateCmd, docsCmd, pdfsCmd, sendCmd, statusCmd, bouncesCmd, orphansCmd)
}
