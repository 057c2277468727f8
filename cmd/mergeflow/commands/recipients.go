package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mergeflow/internal/printer"
	"github.com/dmitrymomot/mergeflow/pkg/sheet"
)

var importSheet string

var recipientsCmd = &cobra.Command{
	Use:   "recipients",
	Short: "Manage the recipient table",
}

var recipientsImportCmd = &cobra.Command{
	Use:   "import FILE.csv",
	Short: "Replace the Postgres recipient table with a CSV file",
	Long: `Replace every row and column of a Postgres recipient sheet with the
contents of a CSV file whose first row is the header.

The import runs in one transaction. Existing DocId, PdfId and status values
are kept only if they are columns of the file.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecipientsImport,
}

func runRecipientsImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return printer.Error("Cannot open file", err.Error(), nil)
	}
	defer f.Close()

	table, err := sheet.ReadCSV(f)
	if err != nil {
		return printer.Error("Invalid CSV file", err.Error(), []string{
			"The first row must be a header with unique, non-empty column names",
		})
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()
	if err := e.require("database.url"); err != nil {
		return err
	}

	ctx := cmd.Context()
	pool, err := e.database(ctx)
	if err != nil {
		return printer.Error("Cannot connect to the database", err.Error(), []string{"Check database.url"})
	}

	name := importSheet
	if name == "" {
		name = e.cfg.Recipients.Sheet
	}
	if err := sheet.NewPostgresStore(pool, name).Import(ctx, table); err != nil {
		return printer.Error("Import failed", err.Error(), nil)
	}
	printer.Success(cmd.OutOrStdout(), "imported %d recipients, %d columns", len(table.Records), len(table.Columns))
	return nil
}

func init() {
	recipientsImportCmd.Flags().StringVar(&importSheet, "sheet", "", "target sheet (default recipients.sheet)")
	recipientsCmd.AddCommand(recipientsImportCmd)
	rootCmd.AddCommand(recipientsCmd)
}
