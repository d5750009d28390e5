package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/shopfloor-go/internal/adapters/api"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/commands"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
)

// NewProductionCommand creates the production command with subcommands
func NewProductionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "production",
		Short: "Register production across tasks",
		Long: `Register production output that is not tied to a single task.

Output is distributed over the product's open tasks in queue order: highest
priority first, then by sort order and creation time. Whatever exceeds every
open task is booked as overproduction.

Examples:
  shopfloor production bulk sheet.yaml
  shopfloor production bulk - < sheet.yaml
  shopfloor production by-product --product prod-1 --quality 120 --defect 4`,
	}

	cmd.AddCommand(newProductionBulkCommand())
	cmd.AddCommand(newProductionByProductCommand())

	return cmd
}

// productionSheet is the YAML layout accepted by 'production bulk'
type productionSheet struct {
	ProductionDate string             `yaml:"production_date"`
	Notes          string             `yaml:"notes"`
	Rows           []commands.BulkRow `yaml:"rows"`
}

// parseSheet reads a production sheet and converts it into a bulk request
func parseSheet(r io.Reader) (dtos.BulkRequest, error) {
	var sheet productionSheet
	if err := yaml.NewDecoder(r).Decode(&sheet); err != nil {
		return dtos.BulkRequest{}, fmt.Errorf("failed to parse production sheet: %w", err)
	}
	if len(sheet.Rows) == 0 {
		return dtos.BulkRequest{}, fmt.Errorf("production sheet has no rows")
	}

	req := dtos.BulkRequest{
		Rows:  make([]dtos.BulkRowRequest, len(sheet.Rows)),
		Notes: sheet.Notes,
	}
	if sheet.ProductionDate != "" {
		d, err := dtos.ParseDate(sheet.ProductionDate)
		if err != nil {
			return dtos.BulkRequest{}, fmt.Errorf("production_date: %w", err)
		}
		req.ProductionDate = &d
	}
	for i, row := range sheet.Rows {
		req.Rows[i] = dtos.BulkRowRequest{
			Article:          row.Article,
			ProducedQuantity: row.ProducedQuantity,
			QualityQuantity:  row.QualityQuantity,
			DefectQuantity:   row.DefectQuantity,
		}
	}
	return req, nil
}

func newProductionBulkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bulk <sheet.yaml|->",
		Short: "Register a production sheet",
		Long: `Register a production sheet. Each row names an article and its output;
rows succeed or fail independently and the report lists every row.

Sheet format:
  production_date: 2025-03-10
  notes: night shift
  rows:
    - article: ART-100
      quality: 48
      defect: 2
    - article: ART-200
      produced: 30
      quality: 30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open production sheet: %w", err)
				}
				defer f.Close()
				in = f
			}

			req, err := parseSheet(in)
			if err != nil {
				return err
			}

			report, err := e.client.BulkRegister(cmd.Context(), req)
			if err != nil {
				return err
			}
			e.emit(report, func(w io.Writer) { renderBulkReport(w, report) })
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d rows failed", report.Failed, len(report.Rows))
			}
			return nil
		},
	}
}

func newProductionByProductCommand() *cobra.Command {
	var (
		produced int
		quality  int
		defect   int
		date     string
		notes    string
	)

	cmd := &cobra.Command{
		Use:   "by-product",
		Short: "Distribute one output over a product's open tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			product, err := e.resolveProductID(true)
			if err != nil {
				return err
			}
			productionDate, err := parseDateFlag("date", date)
			if err != nil {
				return err
			}

			distribution, err := e.client.CompleteByProduct(cmd.Context(), dtos.ByProductRequest{
				ProductID:        product,
				ProducedQuantity: optionalInt(cmd, "produced", produced),
				QualityQuantity:  quality,
				DefectQuantity:   defect,
				ProductionDate:   dtos.NewDate(productionDate),
				Notes:            notes,
			})
			if err != nil {
				return err
			}
			e.emit(distribution, func(w io.Writer) { renderDistribution(w, distribution) })
			return nil
		},
	}

	cmd.Flags().IntVar(&produced, "produced", 0, "Total produced (quality + defect)")
	cmd.Flags().IntVar(&quality, "quality", 0, "Good units")
	cmd.Flags().IntVar(&defect, "defect", 0, "Rejected units")
	cmd.Flags().StringVar(&date, "date", "", "Production date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes stored on the stock movements")

	return cmd
}

func renderBulkReport(w io.Writer, report *api.BulkReport) {
	fmt.Fprintf(w, "Batch %s, production date %s\n", report.BatchID, report.ProductionDate.Format("2006-01-02"))
	for _, row := range report.Rows {
		renderDistribution(w, row)
	}
	fmt.Fprintf(w, "\n%d succeeded, %d with warnings, %d failed\n", report.Succeeded, report.Warnings, report.Failed)
}
