package production

// RegistrationResult describes the effect of one quantity change on a task
type RegistrationResult struct {
	TaskID string
	Before Quantities
	After  Quantities

	// WasCompleted is true when this registration moved the task to completed
	WasCompleted bool

	// Reopened is true when a correction took a completed task back to in_progress
	Reopened bool

	RemainingQuantity int

	// OverproductionQuantity is the newly crossed surplus, never negative
	OverproductionQuantity int

	// OverproductionDelta is the signed surplus change, negative when a correction removes surplus
	OverproductionDelta int
}

// Delta returns the change applied to the counters
func (r RegistrationResult) Delta() Quantities {
	return r.After.Sub(r.Before)
}

// QualityDelta is the signed quality change, which is what moves through stock
func (r RegistrationResult) QualityDelta() int {
	return r.After.Quality - r.Before.Quality
}
