package steps

import (
	"fmt"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	planningQueries "github.com/andrescamacho/shopfloor-go/internal/application/planning/queries"
	"github.com/andrescamacho/shopfloor-go/internal/domain/planning"
)

type planningContext struct {
	*productionContext

	overlaps *planningQueries.CheckOverlapsResponse
	plan     *planningQueries.SuggestPlanResponse
	windows  map[string]planning.Window
}

func (pl *planningContext) reset() {
	pl.overlaps = nil
	pl.plan = nil
	pl.windows = make(map[string]planning.Window)
}

func (pl *planningContext) iCheckOverlapsFor(start, end string) error {
	from, err := parseDay(start)
	if err != nil {
		return err
	}
	to, err := parseDay(end)
	if err != nil {
		return err
	}
	resp, err := mediator.Send[*planningQueries.CheckOverlapsResponse](pl.ctx, pl.fixture.Mediator,
		&planningQueries.CheckOverlapsQuery{StartDate: from, EndDate: to, Alternatives: true})
	pl.lastErr = err
	pl.overlaps = resp
	return nil
}

func (pl *planningContext) iAskForAPlan(quantity int, productID string) error {
	resp, err := mediator.Send[*planningQueries.SuggestPlanResponse](pl.ctx, pl.fixture.Mediator,
		&planningQueries.SuggestPlanQuery{ProductID: productID, Quantity: quantity})
	pl.lastErr = err
	pl.plan = resp
	return nil
}

func (pl *planningContext) theConflictsShouldBe(table *messages.PickleTable) error {
	if pl.overlaps == nil {
		return fmt.Errorf("no overlap result: %v", pl.lastErr)
	}
	want := tableRows(table)
	if len(pl.overlaps.Conflicts) != len(want) {
		return fmt.Errorf("expected %d conflicts, got %d", len(want), len(pl.overlaps.Conflicts))
	}
	for _, row := range want {
		id, err := pl.taskID(row["task"])
		if err != nil {
			return err
		}
		var found *planningQueries.ConflictDTO
		for _, c := range pl.overlaps.Conflicts {
			if c.TaskID == id {
				found = c
			}
		}
		if found == nil {
			return fmt.Errorf("task %s is not reported as a conflict", row["task"])
		}
		if got := fmt.Sprint(found.OverlapDays); got != row["overlap days"] {
			return fmt.Errorf("task %s: expected %s overlap days, got %s", row["task"], row["overlap days"], got)
		}
	}
	return nil
}

func (pl *planningContext) thereShouldBeNoConflicts() error {
	if pl.overlaps == nil {
		return fmt.Errorf("no overlap result: %v", pl.lastErr)
	}
	if pl.overlaps.HasConflicts {
		return fmt.Errorf("expected no conflicts, got %d", len(pl.overlaps.Conflicts))
	}
	return nil
}

func (pl *planningContext) everyAlternativeShouldLastDays(days int) error {
	if pl.overlaps == nil || len(pl.overlaps.Alternatives) == 0 {
		return fmt.Errorf("no alternatives were suggested")
	}
	for _, s := range pl.overlaps.Alternatives {
		w := planning.MustWindow(s.StartDate, s.EndDate)
		if w.Days() != days {
			return fmt.Errorf("alternative %s lasts %d days", w, w.Days())
		}
	}
	return nil
}

func (pl *planningContext) noAlternativeShouldOverlapTask(name string) error {
	task, err := pl.task(name)
	if err != nil {
		return err
	}
	existing, err := planning.NewWindow(task.PlannedStartDate(), task.PlannedEndDate())
	if err != nil {
		return err
	}
	for _, s := range pl.overlaps.Alternatives {
		w := planning.MustWindow(s.StartDate, s.EndDate)
		if planning.Overlaps(w, existing) {
			return fmt.Errorf("alternative %s overlaps task %s %s", w, name, existing)
		}
	}
	return nil
}

func (pl *planningContext) noAlternativeShouldStartBefore(day string) error {
	limit, err := parseDay(day)
	if err != nil {
		return err
	}
	for _, s := range pl.overlaps.Alternatives {
		if s.StartDate.Before(*limit) {
			return fmt.Errorf("alternative starts %s, before %s", s.StartDate.Format("2006-01-02"), day)
		}
	}
	return nil
}

func (pl *planningContext) theFirstAlternativeShouldShiftBy(days int) error {
	if pl.overlaps == nil || len(pl.overlaps.Alternatives) == 0 {
		return fmt.Errorf("no alternatives were suggested")
	}
	if got := pl.overlaps.Alternatives[0].ShiftDays; got != days {
		return fmt.Errorf("expected first alternative shifted by %d days, got %d", days, got)
	}
	return nil
}

func (pl *planningContext) alternativesShouldBeRankedByConfidence() error {
	alts := pl.overlaps.Alternatives
	for i := 1; i < len(alts); i++ {
		if alts[i].Confidence > alts[i-1].Confidence {
			return fmt.Errorf("alternative %d ranks above alternative %d", i, i-1)
		}
	}
	return nil
}

func (pl *planningContext) windowsAre(table *messages.PickleTable) error {
	for _, row := range tableRows(table) {
		start, err := parseDay(row["start"])
		if err != nil {
			return err
		}
		end, err := parseDay(row["end"])
		if err != nil {
			return err
		}
		w, err := planning.NewWindow(start, end)
		if err != nil {
			return err
		}
		pl.windows[row["name"]] = w
	}
	return nil
}

func (pl *planningContext) windowsShouldOverlapBothWays(a, b string, want string) error {
	wa, ok := pl.windows[a]
	if !ok {
		return fmt.Errorf("unknown window %q", a)
	}
	wb, ok := pl.windows[b]
	if !ok {
		return fmt.Errorf("unknown window %q", b)
	}
	expected := want == "overlap"
	if planning.Overlaps(wa, wb) != expected || planning.Overlaps(wb, wa) != expected {
		return fmt.Errorf("expected %s and %s to %s in both directions", a, b, want)
	}
	return nil
}

func (pl *planningContext) thePlanShouldLast(days int) error {
	if pl.plan == nil {
		return fmt.Errorf("no plan: %v", pl.lastErr)
	}
	if pl.plan.DurationDays != days {
		return fmt.Errorf("expected %d days, got %d (%s)", days, pl.plan.DurationDays, pl.plan.Reasoning)
	}
	return nil
}

func (pl *planningContext) thePlanShouldStartOn(day string) error {
	if pl.plan == nil {
		return fmt.Errorf("no plan: %v", pl.lastErr)
	}
	if got := pl.plan.SuggestedStart.Format("2006-01-02"); got != day {
		return fmt.Errorf("expected start %s, got %s (%s)", day, got, pl.plan.Reasoning)
	}
	return nil
}

func registerPlanningSteps(sc *godog.ScenarioContext, pl *planningContext) {
	sc.Step(`^I check overlaps for "([^"]*)" to "([^"]*)"$`, pl.iCheckOverlapsFor)
	sc.Step(`^I ask for a plan of (\d+) units of "([^"]*)"$`, pl.iAskForAPlan)
	sc.Step(`^the conflicts should be:$`, pl.theConflictsShouldBe)
	sc.Step(`^there should be no conflicts$`, pl.thereShouldBeNoConflicts)
	sc.Step(`^every alternative should last (\d+) days$`, pl.everyAlternativeShouldLastDays)
	sc.Step(`^no alternative should overlap task "([^"]*)"$`, pl.noAlternativeShouldOverlapTask)
	sc.Step(`^no alternative should start before "([^"]*)"$`, pl.noAlternativeShouldStartBefore)
	sc.Step(`^the first alternative should be shifted by (-?\d+) days$`, pl.theFirstAlternativeShouldShiftBy)
	sc.Step(`^the alternatives should be ranked by confidence$`, pl.alternativesShouldBeRankedByConfidence)
	sc.Step(`^the windows:$`, pl.windowsAre)
	sc.Step(`^windows "([^"]*)" and "([^"]*)" should (overlap|not overlap) in both directions$`, pl.windowsShouldOverlapBothWays)
	sc.Step(`^the plan should take (\d+) days?$`, pl.thePlanShouldLast)
	sc.Step(`^the plan should start on "([^"]*)"$`, pl.thePlanShouldStartOn)
}
