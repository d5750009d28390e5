package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/shopfloor-go/internal/application/planning/queries"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
)

// NewPlanCommand creates the plan command with subcommands
func NewPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Check planning windows and estimate new production",
		Long: `Check planning windows against scheduled work and estimate new production.

Examples:
  shopfloor plan overlaps --start 2025-03-10 --end 2025-03-12 --alternatives
  shopfloor plan suggest --product prod-1 --quantity 500`,
	}

	cmd.AddCommand(newPlanOverlapsCommand())
	cmd.AddCommand(newPlanSuggestCommand())

	return cmd
}

func newPlanOverlapsCommand() *cobra.Command {
	var (
		start, end   string
		exclude      string
		alternatives bool
	)

	cmd := &cobra.Command{
		Use:   "overlaps",
		Short: "List tasks overlapping a planning window",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			product, err := e.resolveProductID(false)
			if err != nil {
				return err
			}
			startDate, err := parseDateFlag("start", start)
			if err != nil {
				return err
			}
			endDate, err := parseDateFlag("end", end)
			if err != nil {
				return err
			}

			var report queries.CheckOverlapsResponse
			err = e.client.CheckOverlaps(cmd.Context(), dtos.OverlapRequest{
				StartDate:     dtos.NewDate(startDate),
				EndDate:       dtos.NewDate(endDate),
				ProductID:     product,
				ExcludeTaskID: exclude,
				Alternatives:  alternatives,
			}, &report)
			if err != nil {
				return err
			}
			e.emit(report, func(w io.Writer) { renderOverlaps(w, &report) })
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Window start YYYY-MM-DD (open when omitted)")
	cmd.Flags().StringVar(&end, "end", "", "Window end YYYY-MM-DD (open when omitted)")
	cmd.Flags().StringVar(&exclude, "exclude", "", "Task to leave out, usually the one being rescheduled")
	cmd.Flags().BoolVar(&alternatives, "alternatives", false, "Propose conflict-free windows of the same length")

	return cmd
}

func newPlanSuggestCommand() *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Estimate duration and start date for new production",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			product, err := e.resolveProductID(true)
			if err != nil {
				return err
			}

			var plan queries.SuggestPlanResponse
			if err := e.client.SuggestPlan(cmd.Context(), dtos.SuggestRequest{ProductID: product, Quantity: quantity}, &plan); err != nil {
				return err
			}
			e.emit(plan, func(w io.Writer) { renderPlan(w, &plan) })
			return nil
		},
	}

	cmd.Flags().IntVarP(&quantity, "quantity", "q", 0, "Quantity to produce (required)")
	_ = cmd.MarkFlagRequired("quantity")
	return cmd
}

func renderOverlaps(w io.Writer, report *queries.CheckOverlapsResponse) {
	if !report.HasConflicts {
		fmt.Fprintln(w, "✓ No conflicts")
		return
	}
	fmt.Fprintf(w, "%d conflicting tasks:\n", len(report.Conflicts))
	for _, c := range report.Conflicts {
		fmt.Fprintf(w, "  %-8s %-12s %s..%s  %d days overlap\n", shortID(c.TaskID), c.ProductID,
			formatDate(c.StartDate), formatDate(c.EndDate), c.OverlapDays)
	}
	if len(report.Alternatives) > 0 {
		fmt.Fprintln(w, "\nAlternatives:")
		for _, s := range report.Alternatives {
			fmt.Fprintf(w, "  %s..%s  %3.0f%%  %s\n", s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02"),
				s.Confidence*100, s.Reason)
		}
	}
}

func renderPlan(w io.Writer, plan *queries.SuggestPlanResponse) {
	fmt.Fprintf(w, "Product:     %s\n", plan.ProductID)
	fmt.Fprintf(w, "Quantity:    %d\n", plan.Quantity)
	fmt.Fprintf(w, "Window:      %s .. %s (%d days)\n", plan.SuggestedStart.Format("2006-01-02"),
		plan.SuggestedEnd.Format("2006-01-02"), plan.DurationDays)
	fmt.Fprintf(w, "Daily rate:  %.1f units\n", plan.DailyRate)
	fmt.Fprintf(w, "Queue:       %d days ahead\n", plan.QueueDays)
	fmt.Fprintf(w, "Confidence:  %.0f%% (%d samples)\n", plan.Confidence*100, plan.SampleCount)
	fmt.Fprintf(w, "Reasoning:   %s\n", plan.Reasoning)
}
