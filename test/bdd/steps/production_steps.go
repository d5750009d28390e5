package steps

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/commands"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/dtos"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
	"github.com/andrescamacho/shopfloor-go/test/helpers"
)

type productionContext struct {
	fixture *helpers.ProductionFixture
	ctx     context.Context

	// tasks maps scenario names to task IDs
	tasks        map[string]string
	lastErr      error
	registration *dtos.RegistrationDTO
	bulk         *commands.BulkRegisterProductionResponse
}

func (pc *productionContext) reset() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}
	f, err := helpers.NewProductionFixtureOn(helpers.SharedTestDB)
	if err != nil {
		return err
	}
	pc.fixture = f
	pc.ctx = context.Background()
	pc.tasks = make(map[string]string)
	pc.lastErr = nil
	pc.registration = nil
	pc.bulk = nil
	return nil
}

// tableRows converts a data table with a header row into maps keyed by column
func tableRows(table *messages.PickleTable) []map[string]string {
	if len(table.Rows) == 0 {
		return nil
	}
	header := table.Rows[0].Cells
	rows := make([]map[string]string, 0, len(table.Rows)-1)
	for _, r := range table.Rows[1:] {
		row := make(map[string]string, len(header))
		for i, cell := range r.Cells {
			row[header[i].Value] = cell.Value
		}
		rows = append(rows, row)
	}
	return rows
}

func parseDay(s string) (*time.Time, error) {
	if s == "" || s == "-" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (pc *productionContext) taskID(name string) (string, error) {
	id, ok := pc.tasks[name]
	if !ok {
		return "", fmt.Errorf("unknown task %q", name)
	}
	return id, nil
}

func (pc *productionContext) task(name string) (*production.ProductionTask, error) {
	id, err := pc.taskID(name)
	if err != nil {
		return nil, err
	}
	return pc.fixture.Task(id)
}

// Given steps

func (pc *productionContext) aProductWithArticle(productID, article string) error {
	return pc.fixture.SeedProduct(productID, article)
}

func (pc *productionContext) aTaskRequestingUnits(name, productID string, requested, priority int) error {
	id, err := pc.fixture.CreateTask(pc.ctx, &commands.CreateTaskCommand{
		ProductID:         productID,
		RequestedQuantity: requested,
		Priority:          priority,
		PlannedStartDate:  timePtr(pc.fixture.Day(0)),
		PlannedEndDate:    timePtr(pc.fixture.Day(2)),
	})
	if err != nil {
		return err
	}
	pc.tasks[name] = id
	return nil
}

func (pc *productionContext) theFollowingTasks(table *messages.PickleTable) error {
	for _, row := range tableRows(table) {
		requested, err := strconv.Atoi(row["requested"])
		if err != nil {
			return fmt.Errorf("requested: %w", err)
		}
		priority := 0
		if v := row["priority"]; v != "" {
			if priority, err = strconv.Atoi(v); err != nil {
				return fmt.Errorf("priority: %w", err)
			}
		}
		start, err := parseDay(row["start"])
		if err != nil {
			return err
		}
		end, err := parseDay(row["end"])
		if err != nil {
			return err
		}
		id, err := pc.fixture.CreateTask(pc.ctx, &commands.CreateTaskCommand{
			ProductID:         row["product"],
			RequestedQuantity: requested,
			Priority:          priority,
			PlannedStartDate:  start,
			PlannedEndDate:    end,
		})
		if err != nil {
			return fmt.Errorf("failed to create task %s: %w", row["name"], err)
		}
		pc.tasks[row["name"]] = id
	}
	return nil
}

// When steps

func (pc *productionContext) iRegisterOnTask(quality, defect int, name string) error {
	id, err := pc.taskID(name)
	if err != nil {
		return err
	}
	resp, err := mediator.Send[*commands.RegistrationResponse](pc.ctx, pc.fixture.Mediator, &commands.RegisterProductionCommand{
		TaskID:          id,
		QualityQuantity: quality,
		DefectQuantity:  defect,
	})
	pc.lastErr = err
	if err == nil {
		pc.registration = resp.Registration
	}
	return nil
}

func (pc *productionContext) iCompleteTask(name string, quality, defect int) error {
	id, err := pc.taskID(name)
	if err != nil {
		return err
	}
	resp, err := mediator.Send[*commands.RegistrationResponse](pc.ctx, pc.fixture.Mediator, &commands.CompleteTaskCommand{
		TaskID:          id,
		QualityQuantity: quality,
		DefectQuantity:  defect,
	})
	pc.lastErr = err
	if err == nil {
		pc.registration = resp.Registration
	}
	return nil
}

func (pc *productionContext) iTransitionTask(action, name string) error {
	id, err := pc.taskID(name)
	if err != nil {
		return err
	}
	var req mediator.Request
	switch action {
	case "start":
		req = &commands.StartTaskCommand{TaskID: id}
	case "pause":
		req = &commands.PauseTaskCommand{TaskID: id}
	case "resume":
		req = &commands.ResumeTaskCommand{TaskID: id}
	case "cancel":
		req = &commands.CancelTaskCommand{TaskID: id, Reason: "withdrawn"}
	case "delete":
		req = &commands.DeleteTaskCommand{TaskID: id}
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	_, pc.lastErr = pc.fixture.Mediator.Send(pc.ctx, req)
	return nil
}

func (pc *productionContext) iBulkRegister(table *messages.PickleTable) error {
	var rows []commands.BulkRow
	for _, row := range tableRows(table) {
		quality, err := strconv.Atoi(row["quality"])
		if err != nil {
			return fmt.Errorf("quality: %w", err)
		}
		defect := 0
		if v := row["defect"]; v != "" {
			if defect, err = strconv.Atoi(v); err != nil {
				return fmt.Errorf("defect: %w", err)
			}
		}
		rows = append(rows, commands.BulkRow{Article: row["article"], QualityQuantity: quality, DefectQuantity: defect})
	}

	resp, err := mediator.Send[*commands.BulkRegisterProductionResponse](pc.ctx, pc.fixture.Mediator,
		&commands.BulkRegisterProductionCommand{Rows: rows})
	pc.lastErr = err
	pc.bulk = resp
	return nil
}

// Then steps

func (pc *productionContext) theOperationShouldSucceed() error {
	if pc.lastErr != nil {
		return fmt.Errorf("expected success, got %v", pc.lastErr)
	}
	return nil
}

func (pc *productionContext) theOperationShouldFailWith(kind string) error {
	if pc.lastErr == nil {
		return fmt.Errorf("expected a %s error, got success", kind)
	}
	var ok bool
	switch kind {
	case "validation":
		ok = production.IsValidationError(pc.lastErr)
	case "state":
		ok = production.IsStateError(pc.lastErr)
	case "not found":
		ok = production.IsNotFound(pc.lastErr)
	default:
		return fmt.Errorf("unknown error kind %q", kind)
	}
	if !ok {
		return fmt.Errorf("expected a %s error, got %v", kind, pc.lastErr)
	}
	return nil
}

func (pc *productionContext) taskShouldHaveQuantities(name string, produced, quality, defect int) error {
	task, err := pc.task(name)
	if err != nil {
		return err
	}
	want := production.Quantities{Produced: produced, Quality: quality, Defect: defect}
	if got := task.Quantities(); got != want {
		return fmt.Errorf("task %s: expected %+v, got %+v", name, want, got)
	}
	return nil
}

func (pc *productionContext) taskShouldBe(name, status string) error {
	task, err := pc.task(name)
	if err != nil {
		return err
	}
	if string(task.Status()) != status {
		return fmt.Errorf("task %s: expected status %s, got %s", name, status, task.Status())
	}
	return nil
}

func (pc *productionContext) taskShouldNoLongerExist(name string) error {
	id, err := pc.taskID(name)
	if err != nil {
		return err
	}
	task, err := pc.fixture.Tasks.FindByID(pc.ctx, id)
	if err != nil {
		return err
	}
	if task != nil {
		return fmt.Errorf("task %s still exists with status %s", name, task.Status())
	}
	return nil
}

func (pc *productionContext) theRegistrationShouldReportOverproduction(units int) error {
	if pc.registration == nil {
		return fmt.Errorf("no registration recorded: %v", pc.lastErr)
	}
	if pc.registration.OverproductionQuantity != units {
		return fmt.Errorf("expected overproduction %d, got %d", units, pc.registration.OverproductionQuantity)
	}
	return nil
}

func (pc *productionContext) theRegistrationShouldReportReopened() error {
	if pc.registration == nil {
		return fmt.Errorf("no registration recorded: %v", pc.lastErr)
	}
	if !pc.registration.Reopened {
		return fmt.Errorf("expected the task to be reported as reopened")
	}
	return nil
}

func (pc *productionContext) theBulkReportShouldHave(succeeded, failed int) error {
	if pc.bulk == nil {
		return fmt.Errorf("no bulk report: %v", pc.lastErr)
	}
	if pc.bulk.Succeeded+pc.bulk.Warnings != succeeded || pc.bulk.Failed != failed {
		return fmt.Errorf("expected %d applied and %d failed rows, got %d succeeded, %d warnings, %d failed",
			succeeded, failed, pc.bulk.Succeeded, pc.bulk.Warnings, pc.bulk.Failed)
	}
	return nil
}

func (pc *productionContext) bulkRowShouldHaveStatus(index int, status string) error {
	if pc.bulk == nil || index >= len(pc.bulk.Rows) {
		return fmt.Errorf("bulk report has no row %d", index)
	}
	if got := pc.bulk.Rows[index].Status; got != status {
		return fmt.Errorf("row %d: expected status %s, got %s (%s)", index, status, got, pc.bulk.Rows[index].Message)
	}
	return nil
}

func (pc *productionContext) everyTaskKeepsItsCountersBalanced() error {
	tasks, err := pc.fixture.Tasks.List(pc.ctx, production.TaskFilter{})
	if err != nil {
		return err
	}
	for _, t := range tasks {
		q := t.Quantities()
		if q.Quality+q.Defect != q.Produced {
			return fmt.Errorf("task %s: quality %d + defect %d != produced %d", t.ID(), q.Quality, q.Defect, q.Produced)
		}
		if q.Quality >= t.RequestedQuantity() && t.Status() != production.TaskStatusCompleted && t.Status() != production.TaskStatusCancelled {
			return fmt.Errorf("task %s reached %d of %d but is %s", t.ID(), q.Quality, t.RequestedQuantity(), t.Status())
		}
	}
	return nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func registerProductionSteps(sc *godog.ScenarioContext, pc *productionContext) {
	sc.Step(`^a product "([^"]*)" with article "([^"]*)"$`, pc.aProductWithArticle)
	sc.Step(`^a task "([^"]*)" for "([^"]*)" requesting (\d+) units with priority (\d+)$`, pc.aTaskRequestingUnits)
	sc.Step(`^the following tasks:$`, pc.theFollowingTasks)

	sc.Step(`^I register (-?\d+) quality and (-?\d+) defect on task "([^"]*)"$`, pc.iRegisterOnTask)
	sc.Step(`^I complete task "([^"]*)" with (\d+) quality and (\d+) defect$`, pc.iCompleteTask)
	sc.Step(`^I (start|pause|resume|cancel|delete) task "([^"]*)"$`, pc.iTransitionTask)
	sc.Step(`^I bulk register:$`, pc.iBulkRegister)

	sc.Step(`^the operation should succeed$`, pc.theOperationShouldSucceed)
	sc.Step(`^the operation should fail with a (validation|state|not found) error$`, pc.theOperationShouldFailWith)
	sc.Step(`^task "([^"]*)" should have produced (\d+), quality (\d+) and defect (\d+)$`, pc.taskShouldHaveQuantities)
	sc.Step(`^task "([^"]*)" should be "([^"]*)"$`, pc.taskShouldBe)
	sc.Step(`^task "([^"]*)" should no longer exist$`, pc.taskShouldNoLongerExist)
	sc.Step(`^the registration should report (\d+) units of overproduction$`, pc.theRegistrationShouldReportOverproduction)
	sc.Step(`^the registration should report the task as reopened$`, pc.theRegistrationShouldReportReopened)
	sc.Step(`^the bulk report should have (\d+) applied and (\d+) failed rows?$`, pc.theBulkReportShouldHave)
	sc.Step(`^bulk row (\d+) should have status "([^"]*)"$`, pc.bulkRowShouldHaveStatus)
	sc.Step(`^every task keeps quality plus defect equal to produced$`, pc.everyTaskKeepsItsCountersBalanced)
}
