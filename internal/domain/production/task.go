package production

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// MinCancelReasonLength is the minimum number of non-blank characters a cancel reason needs
const MinCancelReasonLength = 5

// ProductionTask is a demand to produce a quantity of one product, tracked
// through its execution lifecycle and its produced/quality/defect counters.
//
// State Machine:
//
//	pending -> in_progress <-> paused
//	in_progress -> completed (auto when quality >= requested, or forced)
//	pending|in_progress|paused -> cancelled
//	completed -> in_progress (quality correction below requested)
//
// Counters always satisfy quality + defect == produced.
type ProductionTask struct {
	id        string
	productID string
	orderID   string

	requestedQuantity int
	counters          Quantities

	status         TaskStatus
	planningStatus PlanningStatus
	priority       Priority
	sortOrder      int

	plannedStartDate *time.Time
	plannedEndDate   *time.Time

	createdBy   string
	assignedTo  string
	startedBy   string
	completedBy string
	cancelledBy string

	createdAt   time.Time
	updatedAt   time.Time
	startedAt   *time.Time
	completedAt *time.Time
	cancelledAt *time.Time

	notes          string
	completionNote string
	cancelReason   string

	version int
}

// TaskDraft carries the input needed to create a task
type TaskDraft struct {
	ProductID         string
	OrderID           string
	RequestedQuantity int
	Priority          Priority // zero means DefaultPriority
	PlannedStartDate  *time.Time
	PlannedEndDate    *time.Time
	AssignedTo        string
	Notes             string
	CreatedBy         string
	SortOrder         int
}

// NewProductionTask validates a draft and creates a pending task
func NewProductionTask(draft TaskDraft, now time.Time) (*ProductionTask, error) {
	if strings.TrimSpace(draft.ProductID) == "" {
		return nil, NewValidationError("productId", "is required")
	}
	if draft.RequestedQuantity <= 0 {
		return nil, NewValidationError("requestedQuantity", "must be greater than zero")
	}
	if draft.PlannedStartDate == nil {
		return nil, NewValidationError("plannedStartDate", "is required")
	}
	if draft.PlannedEndDate == nil {
		return nil, NewValidationError("plannedEndDate", "is required")
	}
	start, end := normalizeDate(draft.PlannedStartDate), normalizeDate(draft.PlannedEndDate)
	if err := validateDateOrder(start, end); err != nil {
		return nil, err
	}

	priority := draft.Priority
	if priority == 0 {
		priority = DefaultPriority
	}
	if !priority.IsValid() {
		return nil, NewValidationError("priority", fmt.Sprintf("must be between %d and %d", PriorityLow, PriorityCritical))
	}

	return &ProductionTask{
		id:                uuid.New().String(),
		productID:         draft.ProductID,
		orderID:           draft.OrderID,
		requestedQuantity: draft.RequestedQuantity,
		status:            TaskStatusPending,
		planningStatus:    PlanningStatusDraft,
		priority:          priority,
		sortOrder:         draft.SortOrder,
		plannedStartDate:  start,
		plannedEndDate:    end,
		createdBy:         draft.CreatedBy,
		assignedTo:        draft.AssignedTo,
		notes:             draft.Notes,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

// TaskSnapshot holds every persisted field of a task
type TaskSnapshot struct {
	ID                string
	ProductID         string
	OrderID           string
	RequestedQuantity int
	ProducedQuantity  int
	QualityQuantity   int
	DefectQuantity    int
	Status            TaskStatus
	PlanningStatus    PlanningStatus
	Priority          Priority
	SortOrder         int
	PlannedStartDate  *time.Time
	PlannedEndDate    *time.Time
	CreatedBy         string
	AssignedTo        string
	StartedBy         string
	CompletedBy       string
	CancelledBy       string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	StartedAt         *time.Time
	CompletedAt       *time.Time
	CancelledAt       *time.Time
	Notes             string
	CompletionNote    string
	CancelReason      string
	Version           int
}

// ReconstructProductionTask rebuilds a task from persistence
func ReconstructProductionTask(s TaskSnapshot) (*ProductionTask, error) {
	counters := Quantities{Produced: s.ProducedQuantity, Quality: s.QualityQuantity, Defect: s.DefectQuantity}
	if err := counters.Validate(); err != nil {
		return nil, fmt.Errorf("stored task %s is inconsistent: %w", s.ID, err)
	}
	if !s.Status.IsValid() {
		return nil, fmt.Errorf("stored task %s has unknown status %q", s.ID, s.Status)
	}
	planningStatus := s.PlanningStatus
	if planningStatus == "" {
		planningStatus = PlanningStatusDraft
	}
	return &ProductionTask{
		id:                s.ID,
		productID:         s.ProductID,
		orderID:           s.OrderID,
		requestedQuantity: s.RequestedQuantity,
		counters:          counters,
		status:            s.Status,
		planningStatus:    planningStatus,
		priority:          s.Priority,
		sortOrder:         s.SortOrder,
		plannedStartDate:  normalizeDate(s.PlannedStartDate),
		plannedEndDate:    normalizeDate(s.PlannedEndDate),
		createdBy:         s.CreatedBy,
		assignedTo:        s.AssignedTo,
		startedBy:         s.StartedBy,
		completedBy:       s.CompletedBy,
		cancelledBy:       s.CancelledBy,
		createdAt:         s.CreatedAt,
		updatedAt:         s.UpdatedAt,
		startedAt:         s.StartedAt,
		completedAt:       s.CompletedAt,
		cancelledAt:       s.CancelledAt,
		notes:             s.Notes,
		completionNote:    s.CompletionNote,
		cancelReason:      s.CancelReason,
		version:           s.Version,
	}, nil
}

// Snapshot exports every field for persistence
func (t *ProductionTask) Snapshot() TaskSnapshot {
	return TaskSnapshot{
		ID:                t.id,
		ProductID:         t.productID,
		OrderID:           t.orderID,
		RequestedQuantity: t.requestedQuantity,
		ProducedQuantity:  t.counters.Produced,
		QualityQuantity:   t.counters.Quality,
		DefectQuantity:    t.counters.Defect,
		Status:            t.status,
		PlanningStatus:    t.planningStatus,
		Priority:          t.priority,
		SortOrder:         t.sortOrder,
		PlannedStartDate:  t.plannedStartDate,
		PlannedEndDate:    t.plannedEndDate,
		CreatedBy:         t.createdBy,
		AssignedTo:        t.assignedTo,
		StartedBy:         t.startedBy,
		CompletedBy:       t.completedBy,
		CancelledBy:       t.cancelledBy,
		CreatedAt:         t.createdAt,
		UpdatedAt:         t.updatedAt,
		StartedAt:         t.startedAt,
		CompletedAt:       t.completedAt,
		CancelledAt:       t.cancelledAt,
		Notes:             t.notes,
		CompletionNote:    t.completionNote,
		CancelReason:      t.cancelReason,
		Version:           t.version,
	}
}

// Getters
func (t *ProductionTask) ID() string                     { return t.id }
func (t *ProductionTask) ProductID() string              { return t.productID }
func (t *ProductionTask) OrderID() string                { return t.orderID }
func (t *ProductionTask) RequestedQuantity() int         { return t.requestedQuantity }
func (t *ProductionTask) ProducedQuantity() int          { return t.counters.Produced }
func (t *ProductionTask) QualityQuantity() int           { return t.counters.Quality }
func (t *ProductionTask) DefectQuantity() int            { return t.counters.Defect }
func (t *ProductionTask) Quantities() Quantities         { return t.counters }
func (t *ProductionTask) Status() TaskStatus             { return t.status }
func (t *ProductionTask) PlanningStatus() PlanningStatus { return t.planningStatus }
func (t *ProductionTask) Priority() Priority             { return t.priority }
func (t *ProductionTask) SortOrder() int                 { return t.sortOrder }
func (t *ProductionTask) PlannedStartDate() *time.Time   { return t.plannedStartDate }
func (t *ProductionTask) PlannedEndDate() *time.Time     { return t.plannedEndDate }
func (t *ProductionTask) CreatedBy() string              { return t.createdBy }
func (t *ProductionTask) AssignedTo() string             { return t.assignedTo }
func (t *ProductionTask) StartedBy() string              { return t.startedBy }
func (t *ProductionTask) CompletedBy() string            { return t.completedBy }
func (t *ProductionTask) CancelledBy() string            { return t.cancelledBy }
func (t *ProductionTask) CreatedAt() time.Time           { return t.createdAt }
func (t *ProductionTask) UpdatedAt() time.Time           { return t.updatedAt }
func (t *ProductionTask) StartedAt() *time.Time          { return t.startedAt }
func (t *ProductionTask) CompletedAt() *time.Time        { return t.completedAt }
func (t *ProductionTask) CancelledAt() *time.Time        { return t.cancelledAt }
func (t *ProductionTask) Notes() string                  { return t.notes }
func (t *ProductionTask) CompletionNote() string         { return t.completionNote }
func (t *ProductionTask) CancelReason() string           { return t.cancelReason }
func (t *ProductionTask) Version() int                   { return t.version }

// RemainingQuantity is the quality output still needed to satisfy the request
func (t *ProductionTask) RemainingQuantity() int {
	return Remaining(t.counters.Quality, t.requestedQuantity)
}

// OverproductionQuantity is the quality output above the request
func (t *ProductionTask) OverproductionQuantity() int {
	return Overproduction(t.counters.Quality, t.requestedQuantity)
}

// IsTerminal reports whether the task is completed or cancelled
func (t *ProductionTask) IsTerminal() bool {
	return t.status.IsTerminal()
}

// MarkPersisted records the version assigned by the store after a successful write
func (t *ProductionTask) MarkPersisted(version int) {
	t.version = version
}

// State transitions

// Start moves a pending task into production
func (t *ProductionTask) Start(actor string, at time.Time) error {
	if t.status != TaskStatusPending {
		return &ErrInvalidTaskTransition{
			TaskID:      t.id,
			From:        t.status,
			To:          TaskStatusInProgress,
			Description: "only pending tasks can be started",
		}
	}
	t.markStarted(actor, at)
	return nil
}

// Pause halts a running task
func (t *ProductionTask) Pause(at time.Time) error {
	if t.status != TaskStatusInProgress {
		return &ErrInvalidTaskTransition{
			TaskID:      t.id,
			From:        t.status,
			To:          TaskStatusPaused,
			Description: "only running tasks can be paused",
		}
	}
	t.status = TaskStatusPaused
	t.updatedAt = at
	return nil
}

// Resume continues a paused task
func (t *ProductionTask) Resume(at time.Time) error {
	if t.status != TaskStatusPaused {
		return &ErrInvalidTaskTransition{
			TaskID:      t.id,
			From:        t.status,
			To:          TaskStatusInProgress,
			Description: "only paused tasks can be resumed",
		}
	}
	t.status = TaskStatusInProgress
	t.updatedAt = at
	return nil
}

// Cancel terminates a non-terminal task. Registered quantities are kept.
func (t *ProductionTask) Cancel(actor, reason string, at time.Time) error {
	if t.status.IsTerminal() {
		return &ErrInvalidTaskTransition{
			TaskID:      t.id,
			From:        t.status,
			To:          TaskStatusCancelled,
			Description: "task already finished",
		}
	}
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) < MinCancelReasonLength {
		return NewValidationError("reason", fmt.Sprintf("must be at least %d characters", MinCancelReasonLength))
	}
	t.status = TaskStatusCancelled
	t.cancelReason = reason
	t.cancelledBy = actor
	t.cancelledAt = &at
	t.updatedAt = at
	return nil
}

// EnsureDeletable returns an error unless the task is still pending
func (t *ProductionTask) EnsureDeletable() error {
	if t.status != TaskStatusPending {
		return &ErrTaskNotDeletable{TaskID: t.id, Status: t.status}
	}
	return nil
}

// Quantity registration

// Complete replaces the counters with a final split and completes the task,
// even when quality stays below the requested quantity.
func (t *ProductionTask) Complete(final Quantities, actor, note string, at time.Time) (RegistrationResult, error) {
	if t.status.IsTerminal() {
		return RegistrationResult{}, &ErrInvalidTaskTransition{
			TaskID:      t.id,
			From:        t.status,
			To:          TaskStatusCompleted,
			Description: "task already finished",
		}
	}
	if err := final.ValidateAbsolute(); err != nil {
		return RegistrationResult{}, err
	}

	before := t.counters
	if t.status == TaskStatusPending {
		t.markStarted(actor, at)
	}
	t.counters = final
	t.completionNote = strings.TrimSpace(note)
	t.markCompleted(actor, at)

	return t.result(before, true, false), nil
}

// RegisterDelta applies an incremental registration. Positive components add
// output, negative components correct earlier registrations.
//
// Pending tasks are started implicitly. Paused and cancelled tasks reject every
// delta. Completed tasks accept corrections and reclassifications that move
// quality to defect, never new output; dropping quality below the requested
// quantity reopens the task.
func (t *ProductionTask) RegisterDelta(delta Quantities, actor string, at time.Time) (RegistrationResult, error) {
	switch t.status {
	case TaskStatusCancelled:
		return RegistrationResult{}, &ErrRegistrationRejected{TaskID: t.id, Status: t.status, Reason: "task is cancelled"}
	case TaskStatusPaused:
		return RegistrationResult{}, &ErrRegistrationRejected{TaskID: t.id, Status: t.status, Reason: "resume the task first"}
	case TaskStatusCompleted:
		if !delta.IsZero() && !delta.IsCorrection() && delta.Quality >= 0 {
			return RegistrationResult{}, &ErrRegistrationRejected{TaskID: t.id, Status: t.status, Reason: "completed tasks accept corrections only"}
		}
	}

	after, err := ApplyDelta(t.counters, delta)
	if err != nil {
		return RegistrationResult{}, err
	}

	before := t.counters
	if t.status == TaskStatusPending {
		t.markStarted(actor, at)
	}
	t.counters = after
	t.updatedAt = at
	completed, reopened := t.settle(actor, at)

	return t.result(before, completed, reopened), nil
}

// OverrideQuality sets the quality counter to an absolute value. Defect keeps
// its current value unless given. Produced is recalculated from both.
func (t *ProductionTask) OverrideQuality(quality int, defect *int, actor string, at time.Time) (RegistrationResult, error) {
	if t.status == TaskStatusCancelled {
		return RegistrationResult{}, &ErrRegistrationRejected{TaskID: t.id, Status: t.status, Reason: "task is cancelled"}
	}
	d := t.counters.Defect
	if defect != nil {
		d = *defect
	}
	next := Quantities{Produced: quality + d, Quality: quality, Defect: d}
	if err := next.ValidateAbsolute(); err != nil {
		return RegistrationResult{}, err
	}

	before := t.counters
	if t.status == TaskStatusPending && next.Produced > 0 {
		t.markStarted(actor, at)
	}
	t.counters = next
	t.updatedAt = at
	completed, reopened := t.settle(actor, at)

	return t.result(before, completed, reopened), nil
}

// Editing

// TaskChanges lists the editable fields of a task. Nil means unchanged.
type TaskChanges struct {
	RequestedQuantity *int
	Priority          *int
	AssignedTo        *string
	Notes             *string
	PlannedStartDate  *time.Time
	PlannedEndDate    *time.Time
	ClearPlannedStart bool
	ClearPlannedEnd   bool
	PlanningStatus    *PlanningStatus
}

// HasLockedFieldChanges reports whether the changes touch fields frozen after start
func (c TaskChanges) HasLockedFieldChanges() bool {
	return c.lockedField() != ""
}

func (c TaskChanges) lockedField() string {
	switch {
	case c.RequestedQuantity != nil:
		return "requestedQuantity"
	case c.Priority != nil:
		return "priority"
	case c.AssignedTo != nil:
		return "assignedTo"
	case c.Notes != nil:
		return "notes"
	case c.PlannedStartDate != nil || c.ClearPlannedStart:
		return "plannedStartDate"
	case c.PlannedEndDate != nil || c.ClearPlannedEnd:
		return "plannedEndDate"
	}
	return ""
}

// Update applies edits. Demand and planning fields are editable only while
// pending; the planning status tag can change on any task that is not cancelled.
func (t *ProductionTask) Update(changes TaskChanges, at time.Time) error {
	if field := changes.lockedField(); field != "" && t.status != TaskStatusPending {
		return &ErrFieldLocked{TaskID: t.id, Field: field, Status: t.status}
	}
	if changes.PlanningStatus != nil && t.status == TaskStatusCancelled {
		return &ErrFieldLocked{TaskID: t.id, Field: "planningStatus", Status: t.status}
	}

	requested := t.requestedQuantity
	if changes.RequestedQuantity != nil {
		if *changes.RequestedQuantity <= 0 {
			return NewValidationError("requestedQuantity", "must be greater than zero")
		}
		requested = *changes.RequestedQuantity
	}

	priority := t.priority
	if changes.Priority != nil {
		p, err := NewPriority(*changes.Priority)
		if err != nil {
			return err
		}
		priority = p
	}

	start, end := t.plannedStartDate, t.plannedEndDate
	if changes.ClearPlannedStart {
		start = nil
	}
	if changes.ClearPlannedEnd {
		end = nil
	}
	if changes.PlannedStartDate != nil {
		start = normalizeDate(changes.PlannedStartDate)
	}
	if changes.PlannedEndDate != nil {
		end = normalizeDate(changes.PlannedEndDate)
	}
	if err := validateDateOrder(start, end); err != nil {
		return err
	}

	t.requestedQuantity = requested
	t.priority = priority
	t.plannedStartDate = start
	t.plannedEndDate = end
	if changes.AssignedTo != nil {
		t.assignedTo = strings.TrimSpace(*changes.AssignedTo)
	}
	if changes.Notes != nil {
		t.notes = *changes.Notes
	}
	if changes.PlanningStatus != nil {
		t.planningStatus = *changes.PlanningStatus
	}
	t.updatedAt = at
	return nil
}

// SetSortOrder places a pending task in the manual sequence
func (t *ProductionTask) SetSortOrder(position int, at time.Time) error {
	if t.status != TaskStatusPending {
		return &ErrFieldLocked{TaskID: t.id, Field: "sortOrder", Status: t.status}
	}
	if position < 1 {
		return NewValidationError("sortOrder", "must be positive")
	}
	t.sortOrder = position
	t.updatedAt = at
	return nil
}

// Internal helpers

func (t *ProductionTask) markStarted(actor string, at time.Time) {
	t.status = TaskStatusInProgress
	t.startedBy = actor
	t.startedAt = &at
	t.updatedAt = at
}

func (t *ProductionTask) markCompleted(actor string, at time.Time) {
	t.status = TaskStatusCompleted
	t.completedBy = actor
	t.completedAt = &at
	t.updatedAt = at
}

// settle enforces the completion threshold after the counters changed
func (t *ProductionTask) settle(actor string, at time.Time) (completed, reopened bool) {
	if t.counters.Quality >= t.requestedQuantity {
		if t.status != TaskStatusCompleted {
			if t.startedAt == nil {
				t.markStarted(actor, at)
			}
			t.markCompleted(actor, at)
			return true, false
		}
		return false, false
	}
	if t.status == TaskStatusCompleted {
		t.status = TaskStatusInProgress
		t.completedAt = nil
		t.completedBy = ""
		t.completionNote = ""
		return false, true
	}
	return false, false
}

func (t *ProductionTask) result(before Quantities, completed, reopened bool) RegistrationResult {
	overDelta := OverproductionDelta(before.Quality, t.counters.Quality, t.requestedQuantity)
	over := overDelta
	if over < 0 {
		over = 0
	}
	return RegistrationResult{
		TaskID:                 t.id,
		Before:                 before,
		After:                  t.counters,
		WasCompleted:           completed,
		Reopened:               reopened,
		RemainingQuantity:      t.RemainingQuantity(),
		OverproductionQuantity: over,
		OverproductionDelta:    overDelta,
	}
}

func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := shared.StartOfDay(*t)
	return &d
}

func validateDateOrder(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return NewValidationError("plannedEndDate", "must not be before plannedStartDate")
	}
	return nil
}
