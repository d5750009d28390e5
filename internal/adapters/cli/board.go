package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/shopfloor-go/internal/adapters/api"
	"github.com/andrescamacho/shopfloor-go/internal/application/board"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/domain/planning"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

const defaultGanttDays = 21

// NewBoardCommand shows tasks grouped by due date
func NewBoardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Show tasks grouped into overdue, today, tomorrow, later, unplanned and completed",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			groups, err := e.loadBoard(cmd.Context())
			if err != nil {
				return err
			}
			e.emit(groups, func(w io.Writer) { renderBoard(w, groups) })
			return nil
		},
	}
}

func (e *env) loadBoard(ctx context.Context) (board.Grouping, error) {
	product, err := e.resolveProductID(false)
	if err != nil {
		return nil, err
	}
	tasks, err := e.client.ListTasks(ctx, api.TaskFilter{ProductID: product})
	if err != nil {
		return nil, err
	}
	return board.Group(tasks, shared.NewRealClock()), nil
}

// NewWatchCommand refreshes the board until interrupted
func NewWatchCommand() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Redraw the board periodically",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			if interval <= 0 {
				interval = e.cfg.Client.PollInterval
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			poller := board.NewPoller(interval, func(ctx context.Context) error {
				groups, err := e.loadBoard(ctx)
				if err != nil {
					return err
				}
				if !jsonOutput {
					fmt.Fprint(e.out, "\033[H\033[2J")
					fmt.Fprintln(e.out, faint.Sprintf("%s, refreshing every %s (Ctrl+C to stop)",
						time.Now().Format("15:04:05"), interval))
				}
				e.emit(groups, func(w io.Writer) { renderBoard(w, groups) })
				return nil
			}, func(err error) {
				fmt.Fprintln(cmd.ErrOrStderr(), describeError(err))
			})

			poller.Start(ctx)
			<-ctx.Done()
			poller.Stop()
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval (default client.poll_interval)")
	return cmd
}

// ganttFlags are shared by the chart and its edit subcommands
type ganttFlags struct {
	from     string
	days     int
	dayWidth int
}

func (f *ganttFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.from, "from", "", "First visible day YYYY-MM-DD (default one week ago)")
	cmd.PersistentFlags().IntVar(&f.days, "days", defaultGanttDays, "Number of visible days")
	cmd.PersistentFlags().IntVar(&f.dayWidth, "day-width", board.DefaultDayWidth, "Columns per day")
}

func (f *ganttFlags) view() (*board.GanttView, error) {
	start := shared.AddDays(shared.Today(shared.NewRealClock()), -7)
	if f.from != "" {
		from, err := parseDateFlag("from", f.from)
		if err != nil {
			return nil, err
		}
		start = *from
	}
	if f.days < 1 {
		return nil, fmt.Errorf("--days must be at least 1")
	}
	return board.NewGanttView(start, shared.AddDays(start, f.days-1), f.dayWidth)
}

// NewGanttCommand draws planned windows as a chart and edits them
func NewGanttCommand() *cobra.Command {
	flags := &ganttFlags{}

	cmd := &cobra.Command{
		Use:   "gantt",
		Short: "Show planned windows as a Gantt chart",
		Long: `Show planned windows as a Gantt chart and move or resize them.

Edits are expressed in days (--by) or in chart columns (--cols); columns are
rounded to the nearest day. The edited window must stay inside the visible
range and its start may not pass its end.

Examples:
  shopfloor gantt --from 2025-03-01 --days 30
  shopfloor gantt move <task-id> --by 2
  shopfloor gantt resize-end <task-id> --cols 9 --day-width 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			view, err := flags.view()
			if err != nil {
				return err
			}
			product, err := e.resolveProductID(false)
			if err != nil {
				return err
			}
			from, to := view.Start(), view.End()
			tasks, err := e.client.ListTasks(cmd.Context(), api.TaskFilter{
				ProductID: product,
				From:      &from,
				To:        &to,
			})
			if err != nil {
				return err
			}
			e.emit(tasks, func(w io.Writer) { renderGantt(w, view, tasks) })
			return nil
		},
	}
	flags.register(cmd)

	cmd.AddCommand(newGanttEditCommand(flags, "move", "Shift both planned dates", (*board.GanttView).Move))
	cmd.AddCommand(newGanttEditCommand(flags, "resize-start", "Move the planned start date", (*board.GanttView).ResizeStart))
	cmd.AddCommand(newGanttEditCommand(flags, "resize-end", "Move the planned end date", (*board.GanttView).ResizeEnd))

	return cmd
}

type ganttEdit func(v *board.GanttView, task *dtos.TaskDTO, days int) (planning.Window, error)

func newGanttEditCommand(flags *ganttFlags, use, short string, edit ganttEdit) *cobra.Command {
	var by, cols int

	cmd := &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("by") == cmd.Flags().Changed("cols") {
				return fmt.Errorf("give exactly one of --by or --cols")
			}
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			view, err := flags.view()
			if err != nil {
				return err
			}

			days := by
			if cmd.Flags().Changed("cols") {
				days = view.PixelsToDays(cols)
			}

			details, err := e.client.GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			window, err := edit(view, details.Task, days)
			if err != nil {
				var outside *board.ErrOutsideView
				if errors.As(err, &outside) {
					return fmt.Errorf("%w; widen the chart with --from and --days", err)
				}
				return err
			}

			task, _, err := e.client.UpdateTask(cmd.Context(), args[0], dtos.UpdateTaskRequest{
				PlannedStartDate: dtos.NewDate(window.Start()),
				PlannedEndDate:   dtos.NewDate(window.End()),
			})
			if err != nil {
				return err
			}
			e.emit(task, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Task %s planned %s .. %s\n", shortID(task.ID),
					formatDate(task.PlannedStartDate), formatDate(task.PlannedEndDate))
			})
			return nil
		},
	}

	cmd.Flags().IntVar(&by, "by", 0, "Days to move (negative moves earlier)")
	cmd.Flags().IntVar(&cols, "cols", 0, "Chart columns to move (negative moves earlier)")
	return cmd
}
