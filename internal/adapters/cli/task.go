package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/shopfloor-go/internal/adapters/api"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
)

// NewTaskCommand creates the task command with subcommands
func NewTaskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage production tasks",
		Long: `Manage production tasks and register their output.

A task asks for a quantity of one product inside a planned window. It moves
through pending, in_progress, paused, completed and cancelled. Registering
quality output completes the task once the requested quantity is reached.

Examples:
  shopfloor task create --product prod-1 --quantity 50 --start 2025-03-10 --end 2025-03-12
  shopfloor task list --status pending,in_progress
  shopfloor task register <task-id> --quality 48 --defect 2
  shopfloor task cancel <task-id> --reason "order withdrawn"`,
	}

	cmd.AddCommand(newTaskCreateCommand())
	cmd.AddCommand(newTaskListCommand())
	cmd.AddCommand(newTaskGetCommand())
	cmd.AddCommand(newTaskUpdateCommand())
	cmd.AddCommand(newTaskDeleteCommand())
	cmd.AddCommand(newTaskTransitionCommand("start", "Start a pending task", (*api.ShopfloorClient).StartTask))
	cmd.AddCommand(newTaskTransitionCommand("pause", "Pause a task in progress", (*api.ShopfloorClient).PauseTask))
	cmd.AddCommand(newTaskTransitionCommand("resume", "Resume a paused task", (*api.ShopfloorClient).ResumeTask))
	cmd.AddCommand(newTaskCancelCommand())
	cmd.AddCommand(newTaskQuantityCommand("register", "Register produced quantities on a task", (*api.ShopfloorClient).RegisterProduction))
	cmd.AddCommand(newTaskQuantityCommand("complete", "Register final quantities and complete a task", (*api.ShopfloorClient).CompleteTask))
	cmd.AddCommand(newTaskMovementsCommand())

	return cmd
}

func newTaskCreateCommand() *cobra.Command {
	var (
		quantity   int
		priority   int
		start, end string
		orderID    string
		assignedTo string
		notes      string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a production task",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			product, err := e.resolveProductID(true)
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

			task, err := e.client.CreateTask(cmd.Context(), dtos.CreateTaskRequest{
				ProductID:         product,
				RequestedQuantity: quantity,
				Priority:          priority,
				PlannedStartDate:  dtos.NewDate(startDate),
				PlannedEndDate:    dtos.NewDate(endDate),
				OrderID:           orderID,
				AssignedTo:        assignedTo,
				Notes:             notes,
			})
			if err != nil {
				return err
			}

			e.emit(task, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Task %s created for %s (%d units, %s .. %s)\n",
					task.ID, task.ProductID, task.RequestedQuantity,
					formatDate(task.PlannedStartDate), formatDate(task.PlannedEndDate))
			})
			return nil
		},
	}

	cmd.Flags().IntVarP(&quantity, "quantity", "q", 0, "Requested quantity (required)")
	cmd.Flags().IntVar(&priority, "priority", 0, "Priority 1 (low) to 5 (critical), default 3")
	cmd.Flags().StringVar(&start, "start", "", "Planned start date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&end, "end", "", "Planned end date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&orderID, "order", "", "Order the task produces for")
	cmd.Flags().StringVar(&assignedTo, "assign", "", "Operator the task is assigned to")
	cmd.Flags().StringVar(&notes, "notes", "", "Free text notes")
	_ = cmd.MarkFlagRequired("quantity")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func newTaskListCommand() *cobra.Command {
	var (
		statuses string
		orderID  string
		from, to string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List production tasks in queue order",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			product, err := e.resolveProductID(false)
			if err != nil {
				return err
			}
			fromDate, err := parseDateFlag("from", from)
			if err != nil {
				return err
			}
			toDate, err := parseDateFlag("to", to)
			if err != nil {
				return err
			}

			tasks, err := e.client.ListTasks(cmd.Context(), api.TaskFilter{
				Statuses:  splitList(statuses),
				ProductID: product,
				OrderID:   orderID,
				From:      fromDate,
				To:        toDate,
			})
			if err != nil {
				return err
			}
			e.emit(tasks, func(w io.Writer) { renderTaskTable(w, tasks) })
			return nil
		},
	}

	cmd.Flags().StringVar(&statuses, "status", "", "Comma separated statuses to include")
	cmd.Flags().StringVar(&orderID, "order", "", "Only tasks of this order")
	cmd.Flags().StringVar(&from, "from", "", "Only tasks planned to end on or after this date")
	cmd.Flags().StringVar(&to, "to", "", "Only tasks planned to start on or before this date")

	return cmd
}

func newTaskGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <task-id>",
		Short: "Show one task with its product and order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			details, err := e.client.GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			e.emit(details, func(w io.Writer) { renderTask(w, details) })
			return nil
		},
	}
}

func newTaskUpdateCommand() *cobra.Command {
	var (
		quantity   int
		priority   int
		start, end string
		clearStart bool
		clearEnd   bool
		planning   string
		assignedTo string
		notes      string
		quality    int
		defect     int
	)

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Change task fields",
		Long: `Change task fields. Only the flags given are sent.

Setting --quality or --defect on a completed task corrects its registered
output; lowering quality below the requested quantity reopens the task.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
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

			req := dtos.UpdateTaskRequest{
				RequestedQuantity: optionalInt(cmd, "quantity", quantity),
				Priority:          optionalInt(cmd, "priority", priority),
				AssignedTo:        optionalString(cmd, "assign", assignedTo),
				Notes:             optionalString(cmd, "notes", notes),
				PlannedStartDate:  dtos.NewDate(startDate),
				PlannedEndDate:    dtos.NewDate(endDate),
				ClearPlannedStart: clearStart,
				ClearPlannedEnd:   clearEnd,
				PlanningStatus:    optionalString(cmd, "planning", planning),
				QualityQuantity:   optionalInt(cmd, "quality", quality),
				DefectQuantity:    optionalInt(cmd, "defect", defect),
			}

			task, registration, err := e.client.UpdateTask(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}

			e.emit(struct {
				Task         *dtos.TaskDTO         `json:"task"`
				Registration *dtos.RegistrationDTO `json:"registration,omitempty"`
			}{task, registration}, func(w io.Writer) {
				if registration != nil {
					renderRegistration(w, registration)
					return
				}
				fmt.Fprintf(w, "✓ Task %s updated\n", task.ID)
			})
			return nil
		},
	}

	cmd.Flags().IntVarP(&quantity, "quantity", "q", 0, "Requested quantity")
	cmd.Flags().IntVar(&priority, "priority", 0, "Priority 1 to 5")
	cmd.Flags().StringVar(&start, "start", "", "Planned start date YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "Planned end date YYYY-MM-DD")
	cmd.Flags().BoolVar(&clearStart, "clear-start", false, "Remove the planned start date")
	cmd.Flags().BoolVar(&clearEnd, "clear-end", false, "Remove the planned end date")
	cmd.Flags().StringVar(&planning, "planning", "", "Planning status (draft, confirmed, started, completed)")
	cmd.Flags().StringVar(&assignedTo, "assign", "", "Operator the task is assigned to")
	cmd.Flags().StringVar(&notes, "notes", "", "Free text notes")
	cmd.Flags().IntVar(&quality, "quality", 0, "Corrected quality quantity")
	cmd.Flags().IntVar(&defect, "defect", 0, "Corrected defect quantity")

	return cmd
}

func newTaskDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task without recorded output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			if err := e.client.DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			e.emit(map[string]string{"taskId": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Task %s deleted\n", args[0])
			})
			return nil
		},
	}
}

type transitionFunc func(c *api.ShopfloorClient, ctx context.Context, taskID string) (*dtos.TaskDTO, error)

func newTaskTransitionCommand(use, short string, fn transitionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			task, err := fn(e.client, cmd.Context(), args[0])
			if err != nil {
				return err
			}
			e.emit(task, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Task %s is now %s\n", task.ID, statusCell(task.Status))
			})
			return nil
		},
	}
}

func newTaskCancelCommand() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "cancel <task-id>",
		Short: "Cancel a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			task, err := e.client.CancelTask(cmd.Context(), args[0], reason)
			if err != nil {
				return err
			}
			e.emit(task, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Task %s cancelled\n", task.ID)
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Why the task is cancelled")
	return cmd
}

type quantityFunc func(c *api.ShopfloorClient, ctx context.Context, taskID string, req dtos.QuantityRequest) (*dtos.RegistrationDTO, error)

func newTaskQuantityCommand(use, short string, fn quantityFunc) *cobra.Command {
	var (
		produced int
		quality  int
		defect   int
		date     string
		notes    string
	)

	cmd := &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Long: short + `.

Quantities are added to the task's totals. --produced defaults to
quality + defect; when given it must equal their sum.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			productionDate, err := parseDateFlag("date", date)
			if err != nil {
				return err
			}
			registration, err := fn(e.client, cmd.Context(), args[0], dtos.QuantityRequest{
				ProducedQuantity: optionalInt(cmd, "produced", produced),
				QualityQuantity:  quality,
				DefectQuantity:   defect,
				ProductionDate:   dtos.NewDate(productionDate),
				Notes:            notes,
			})
			if err != nil {
				return err
			}
			e.emit(registration, func(w io.Writer) { renderRegistration(w, registration) })
			return nil
		},
	}

	cmd.Flags().IntVar(&produced, "produced", 0, "Total produced (quality + defect)")
	cmd.Flags().IntVar(&quality, "quality", 0, "Good units")
	cmd.Flags().IntVar(&defect, "defect", 0, "Rejected units")
	cmd.Flags().StringVar(&date, "date", "", "Production date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes stored on the stock movement")

	return cmd
}

func newTaskMovementsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "movements <task-id>",
		Short: "List stock movements booked by a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			movements, err := e.client.ListMovements(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			e.emit(movements, func(w io.Writer) { renderMovements(w, movements) })
			return nil
		},
	}
}
