package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/shopfloor-go/internal/adapters/api"
	"github.com/andrescamacho/shopfloor-go/internal/application/board"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
)

// NewReorderCommand shows and rearranges the pending queue
func NewReorderCommand() *cobra.Command {
	var moves []string

	cmd := &cobra.Command{
		Use:   "reorder",
		Short: "Show or rearrange the pending queue",
		Long: `Show the pending queue, or move tasks inside it.

Positions are zero based and refer to the queue as shown. Each move is sent
to the server immediately; if the server rejects it, the queue is reloaded
and the remaining moves are skipped.

Examples:
  shopfloor reorder --product prod-1
  shopfloor reorder --move 3:0
  shopfloor reorder --move 0:2 --move 4:1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			product, err := e.resolveProductID(false)
			if err != nil {
				return err
			}

			reorderer := board.NewReorderer(api.NewPendingQueue(e.client, product))
			queue, err := reorderer.Load(cmd.Context())
			if err != nil {
				return err
			}

			for _, m := range moves {
				from, to, err := parseMove(m)
				if err != nil {
					return err
				}
				queue, err = reorderer.Move(cmd.Context(), from, to)
				if err != nil {
					e.emit(queue, func(w io.Writer) { renderQueue(w, queue) })
					return err
				}
			}

			e.emit(queue, func(w io.Writer) { renderQueue(w, queue) })
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&moves, "move", nil, "Move from:to, repeatable")
	return cmd
}

func parseMove(s string) (int, int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid move %q: expected from:to", s)
	}
	from, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid move %q: %w", s, err)
	}
	to, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid move %q: %w", s, err)
	}
	return from, to, nil
}

func renderQueue(w io.Writer, queue []*dtos.TaskDTO) {
	if len(queue) == 0 {
		fmt.Fprintln(w, "Pending queue is empty.")
		return
	}
	for i, t := range queue {
		fmt.Fprintf(w, "%3d  %s %-8s %-12s %6d  %s..%s\n", i, priorityCell(t.Priority), shortID(t.ID),
			t.ProductID, t.RequestedQuantity, formatDate(t.PlannedStartDate), formatDate(t.PlannedEndDate))
	}
}
