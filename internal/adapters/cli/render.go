package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/andrescamacho/shopfloor-go/internal/adapters/api"
	"github.com/andrescamacho/shopfloor-go/internal/application/board"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
)

var tonePalette = map[board.Tone]*color.Color{
	board.ToneNeutral: color.New(color.FgWhite),
	board.ToneInfo:    color.New(color.FgCyan),
	board.ToneWarning: color.New(color.FgYellow),
	board.ToneSuccess: color.New(color.FgGreen),
	board.ToneDanger:  color.New(color.FgRed),
}

var (
	bold  = color.New(color.Bold)
	faint = color.New(color.Faint)
)

// paint pads text to width before coloring so columns stay aligned
func paint(tone board.Tone, text string, width int) string {
	c, ok := tonePalette[tone]
	if !ok {
		c = tonePalette[board.ToneNeutral]
	}
	return c.Sprint(fmt.Sprintf("%-*s", width, text))
}

func statusCell(status string) string {
	d := board.DescribeStatus(status)
	return paint(d.Tone, d.Label, 12)
}

func priorityCell(priority int) string {
	d := board.DescribePriority(priority)
	return paint(d.Tone, d.Short, 3)
}

func renderTaskTable(w io.Writer, tasks []*dtos.TaskDTO) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	fmt.Fprintln(w, bold.Sprintf("%-8s  %-12s  %-3s  %-12s  %9s  %9s  %-10s  %-10s", "ID", "STATUS", "PRI", "PRODUCT", "PRODUCED", "REQUESTED", "START", "END"))
	for _, t := range tasks {
		fmt.Fprintf(w, "%-8s  %s  %s  %-12s  %9d  %9d  %-10s  %-10s\n",
			shortID(t.ID), statusCell(t.Status), priorityCell(t.Priority), t.ProductID,
			t.QualityQuantity, t.RequestedQuantity,
			formatDate(t.PlannedStartDate), formatDate(t.PlannedEndDate))
	}
}

func renderTask(w io.Writer, d *api.TaskDetails) {
	t := d.Task
	fmt.Fprintln(w, bold.Sprintf("Task %s", t.ID))
	fmt.Fprintf(w, "  Status:          %s\n", statusCell(t.Status))
	fmt.Fprintf(w, "  Planning:        %s\n", t.PlanningStatus)
	fmt.Fprintf(w, "  Priority:        %s (%s)\n", priorityCell(t.Priority), board.DescribePriority(t.Priority).Label)
	if d.Product != nil {
		fmt.Fprintf(w, "  Product:         %s %s (%s)\n", d.Product.Article, d.Product.Name, d.Product.ID)
	} else {
		fmt.Fprintf(w, "  Product:         %s\n", t.ProductID)
	}
	if d.Order != nil {
		fmt.Fprintf(w, "  Order:           %s for %s\n", d.Order.OrderNumber, d.Order.CustomerName)
	}
	fmt.Fprintf(w, "  Requested:       %d\n", t.RequestedQuantity)
	fmt.Fprintf(w, "  Produced:        %d (quality %d, defect %d)\n", t.ProducedQuantity, t.QualityQuantity, t.DefectQuantity)
	fmt.Fprintf(w, "  Remaining:       %d\n", t.RemainingQuantity)
	if t.OverproductionQuantity > 0 {
		fmt.Fprintf(w, "  Overproduction:  %s\n", paint(board.ToneWarning, fmt.Sprint(t.OverproductionQuantity), 0))
	}
	fmt.Fprintf(w, "  Planned:         %s .. %s\n", formatDate(t.PlannedStartDate), formatDate(t.PlannedEndDate))
	if t.AssignedTo != "" {
		fmt.Fprintf(w, "  Assigned to:     %s\n", t.AssignedTo)
	}
	if t.CancelReason != "" {
		fmt.Fprintf(w, "  Cancel reason:   %s\n", t.CancelReason)
	}
	if t.Notes != "" {
		fmt.Fprintf(w, "  Notes:           %s\n", t.Notes)
	}
}

func renderRegistration(w io.Writer, r *dtos.RegistrationDTO) {
	fmt.Fprintf(w, "✓ Task %s: %s, produced %d (quality %d, defect %d), remaining %d\n",
		shortID(r.Task.ID), statusCell(r.Task.Status), r.Task.ProducedQuantity,
		r.Task.QualityQuantity, r.Task.DefectQuantity, r.RemainingQuantity)
	if r.OverproductionQuantity > 0 {
		fmt.Fprintln(w, paint(board.ToneWarning, fmt.Sprintf("  Overproduction: %d units", r.OverproductionQuantity), 0))
	}
	if r.Reopened {
		fmt.Fprintln(w, paint(board.ToneWarning, "  Task reopened by correction", 0))
	}
}

var rowTones = map[string]board.Tone{
	"success": board.ToneSuccess,
	"warning": board.ToneWarning,
	"error":   board.ToneDanger,
}

func renderDistribution(w io.Writer, d *dtos.DistributionDTO) {
	label := d.Article
	if label == "" {
		label = d.ProductID
	}
	fmt.Fprintf(w, "%s %-12s %s\n", paint(rowTones[d.Status], strings.ToUpper(d.Status), 7), label, d.Message)
	for _, a := range d.Allocations {
		state := ""
		if a.Completed {
			state = " completed"
		}
		fmt.Fprintf(w, "        -> %s quality %d defect %d, remaining %d%s\n",
			shortID(a.TaskID), a.Quality, a.Defect, a.Remaining, state)
	}
	if d.Overproduction > 0 {
		fmt.Fprintf(w, "        overproduction %d\n", d.Overproduction)
	}
}

var bucketTitles = map[board.Bucket]string{
	board.BucketOverdue:   "Overdue",
	board.BucketToday:     "Today",
	board.BucketTomorrow:  "Tomorrow",
	board.BucketLater:     "Later",
	board.BucketUnplanned: "Unplanned",
	board.BucketCompleted: "Completed",
}

func renderBoard(w io.Writer, groups board.Grouping) {
	for _, bucket := range board.BucketOrder {
		tasks := groups[bucket]
		title := fmt.Sprintf("%s (%d)", bucketTitles[bucket], len(tasks))
		if bucket == board.BucketOverdue && len(tasks) > 0 {
			fmt.Fprintln(w, paint(board.ToneDanger, title, 0))
		} else {
			fmt.Fprintln(w, bold.Sprint(title))
		}
		for _, t := range tasks {
			fmt.Fprintf(w, "  %s %s %-8s %-12s %d/%d  %s..%s\n",
				statusCell(t.Status), priorityCell(t.Priority), shortID(t.ID), t.ProductID,
				t.QualityQuantity, t.RequestedQuantity,
				formatDate(t.PlannedStartDate), formatDate(t.PlannedEndDate))
		}
	}
}

const ganttLabelWidth = 22

func renderGantt(w io.Writer, view *board.GanttView, tasks []*dtos.TaskDTO) {
	var header strings.Builder
	header.WriteString(strings.Repeat(" ", ganttLabelWidth))
	for i := 0; i < view.Days(); i++ {
		day := view.Start().AddDate(0, 0, i)
		cell := fmt.Sprintf("%-*s", view.DayWidth(), day.Format("02"))
		header.WriteString(cell[:view.DayWidth()])
	}
	fmt.Fprintln(w, bold.Sprint(header.String()))

	placed := 0
	for _, t := range tasks {
		bar, ok := view.Place(t)
		if !ok {
			continue
		}
		placed++
		row := []rune(strings.Repeat(" ", view.Width()))
		for x := bar.X; x < bar.X+bar.Width && x < len(row); x++ {
			row[x] = '█'
		}
		if bar.ClippedLeft {
			row[bar.X] = '◀'
		}
		if bar.ClippedRight {
			row[bar.X+bar.Width-1] = '▶'
		}
		label := fmt.Sprintf("%-8s %-12s", shortID(t.ID), t.ProductID)
		if len(label) > ganttLabelWidth-1 {
			label = label[:ganttLabelWidth-1]
		}
		tone := board.DescribeStatus(t.Status).Tone
		fmt.Fprintf(w, "%-*s%s\n", ganttLabelWidth, label, paint(tone, string(row), 0))
	}
	if placed == 0 {
		fmt.Fprintln(w, faint.Sprint("No scheduled tasks in this range."))
	}
}

func renderMovements(w io.Writer, movements []*dtos.StockMovementDTO) {
	if len(movements) == 0 {
		fmt.Fprintln(w, "No stock movements.")
		return
	}
	fmt.Fprintln(w, bold.Sprintf("%-10s  %-12s  %8s  %8s  %-24s  %s", "DATE", "TYPE", "QTY", "OVER", "REFERENCE", "BY"))
	for _, m := range movements {
		fmt.Fprintf(w, "%-10s  %-12s  %8d  %8d  %-24s  %s\n",
			m.ProductionDate.Format("2006-01-02"), m.Type, m.Quantity, m.Overproduction, m.Reference, m.CreatedBy)
	}
}
