package dtos

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Date is a calendar day on the wire. It marshals as YYYY-MM-DD and also
// accepts full RFC 3339 timestamps.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate wraps t, returning nil for nil input
func NewDate(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	return &Date{Time: *t}
}

// ParseDate parses YYYY-MM-DD or RFC 3339
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{Time: t}, nil
}

// Ptr returns the date as a time pointer, nil for a nil receiver
func (d *Date) Ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// CreateTaskRequest is the body of POST /tasks
type CreateTaskRequest struct {
	ProductID         string `json:"productId" binding:"required"`
	RequestedQuantity int    `json:"requestedQuantity" binding:"required,gt=0"`
	Priority          int    `json:"priority" binding:"omitempty,min=1,max=5"`
	PlannedStartDate  *Date  `json:"plannedStartDate" binding:"required"`
	PlannedEndDate    *Date  `json:"plannedEndDate" binding:"required"`
	OrderID           string `json:"orderId,omitempty"`
	AssignedTo        string `json:"assignedTo,omitempty"`
	Notes             string `json:"notes,omitempty"`
}

// UpdateTaskRequest is the body of PATCH /tasks/:id. Absent fields are untouched.
type UpdateTaskRequest struct {
	RequestedQuantity *int    `json:"requestedQuantity,omitempty"`
	Priority          *int    `json:"priority,omitempty"`
	AssignedTo        *string `json:"assignedTo,omitempty"`
	Notes             *string `json:"notes,omitempty"`
	PlannedStartDate  *Date   `json:"plannedStartDate,omitempty"`
	PlannedEndDate    *Date   `json:"plannedEndDate,omitempty"`
	ClearPlannedStart bool    `json:"clearPlannedStartDate,omitempty"`
	ClearPlannedEnd   bool    `json:"clearPlannedEndDate,omitempty"`
	PlanningStatus    *string `json:"planningStatus,omitempty"`
	QualityQuantity   *int    `json:"qualityQuantity,omitempty"`
	DefectQuantity    *int    `json:"defectQuantity,omitempty"`
}

// CancelTaskRequest is the body of POST /tasks/:id/cancel
type CancelTaskRequest struct {
	Reason string `json:"reason,omitempty"`
}

// QuantityRequest is the body of POST /tasks/:id/complete and /tasks/:id/register
type QuantityRequest struct {
	ProducedQuantity *int   `json:"producedQuantity,omitempty"`
	QualityQuantity  int    `json:"qualityQuantity"`
	DefectQuantity   int    `json:"defectQuantity"`
	ProductionDate   *Date  `json:"productionDate,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

// ReorderRequest is the body of POST /tasks/reorder
type ReorderRequest struct {
	TaskIDs   []string `json:"taskIds" binding:"required,min=1"`
	ProductID string   `json:"productId,omitempty"`
}

// BulkRowRequest is one line of a bulk registration
type BulkRowRequest struct {
	Article          string `json:"article"`
	ProducedQuantity *int   `json:"producedQuantity,omitempty"`
	QualityQuantity  int    `json:"qualityQuantity"`
	DefectQuantity   int    `json:"defectQuantity"`
}

// BulkRequest is the body of POST /production/bulk
type BulkRequest struct {
	Rows           []BulkRowRequest `json:"rows" binding:"required,min=1"`
	ProductionDate *Date            `json:"productionDate,omitempty"`
	Notes          string           `json:"notes,omitempty"`
}

// ByProductRequest is the body of POST /production/by-product
type ByProductRequest struct {
	ProductID        string `json:"productId" binding:"required"`
	ProducedQuantity *int   `json:"producedQuantity,omitempty"`
	QualityQuantity  int    `json:"qualityQuantity"`
	DefectQuantity   int    `json:"defectQuantity"`
	ProductionDate   *Date  `json:"productionDate,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

// OverlapRequest is the body of POST /planning/overlaps
type OverlapRequest struct {
	StartDate     *Date  `json:"startDate,omitempty"`
	EndDate       *Date  `json:"endDate,omitempty"`
	ProductID     string `json:"productId,omitempty"`
	ExcludeTaskID string `json:"excludeTaskId,omitempty"`
	Alternatives  bool   `json:"alternatives,omitempty"`
}

// SuggestRequest is the body of POST /planning/suggest
type SuggestRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}
