package shared

// OperationContext links stock movements back to the operation that caused them.
//
// Every quantity change on a production task produces a stock movement; the
// context lets the ledger answer "which bulk upload credited this?" as well as
// "which task?".
//
//	ctx := NewOperationContext("bulk-2025-03-10-7f3a", "bulk_registration")
type OperationContext struct {
	// ReferenceID identifies the originating request (task ID, bulk batch ID)
	ReferenceID string

	// OperationType is the kind of operation
	// Examples: "task_registration", "task_completion", "bulk_registration", "product_completion"
	OperationType string
}

// NewOperationContext creates a new operation context with validation
func NewOperationContext(referenceID, operationType string) *OperationContext {
	if referenceID == "" || operationType == "" {
		return nil
	}
	return &OperationContext{
		ReferenceID:   referenceID,
		OperationType: operationType,
	}
}

// IsValid returns true if the context has required fields
func (c *OperationContext) IsValid() bool {
	return c != nil && c.ReferenceID != "" && c.OperationType != ""
}

// String returns a human-readable representation of the context
func (c *OperationContext) String() string {
	if c == nil {
		return "<no context>"
	}
	return c.OperationType + ":" + c.ReferenceID
}
