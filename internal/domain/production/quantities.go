package production

import "fmt"

// Quantities is a produced/quality/defect triple. It is used both for the
// running counters of a task and for the deltas applied to them.
//
// Every triple entering the ledger must satisfy Quality + Defect == Produced.
type Quantities struct {
	Produced int
	Quality  int
	Defect   int
}

// NewQuantities builds a triple from caller input. When produced is nil it is
// derived from quality and defect; otherwise the three values must agree.
func NewQuantities(produced *int, quality, defect int) (Quantities, error) {
	q := Quantities{Quality: quality, Defect: defect, Produced: quality + defect}
	if produced != nil {
		q.Produced = *produced
	}
	if err := q.Validate(); err != nil {
		return Quantities{}, err
	}
	return q, nil
}

// Validate checks that quality and defect add up to produced
func (q Quantities) Validate() error {
	if q.Quality+q.Defect != q.Produced {
		return NewValidationError("quantities", fmt.Sprintf(
			"quality (%d) + defect (%d) must equal produced (%d)", q.Quality, q.Defect, q.Produced))
	}
	return nil
}

// ValidateAbsolute checks a triple meant to replace the counters outright
func (q Quantities) ValidateAbsolute() error {
	if q.Produced < 0 || q.Quality < 0 || q.Defect < 0 {
		return NewValidationError("quantities", "absolute quantities must not be negative")
	}
	return q.Validate()
}

// IsZero reports whether the triple changes nothing
func (q Quantities) IsZero() bool {
	return q.Quality == 0 && q.Defect == 0 && q.Produced == 0
}

// IsCorrection reports whether the delta only removes quantities
func (q Quantities) IsCorrection() bool {
	return !q.IsZero() && q.Quality <= 0 && q.Defect <= 0
}

// IsAddition reports whether the delta only adds quantities
func (q Quantities) IsAddition() bool {
	return !q.IsZero() && q.Quality >= 0 && q.Defect >= 0
}

// Add returns the component-wise sum
func (q Quantities) Add(delta Quantities) Quantities {
	return Quantities{
		Produced: q.Produced + delta.Produced,
		Quality:  q.Quality + delta.Quality,
		Defect:   q.Defect + delta.Defect,
	}
}

// Sub returns the component-wise difference
func (q Quantities) Sub(other Quantities) Quantities {
	return Quantities{
		Produced: q.Produced - other.Produced,
		Quality:  q.Quality - other.Quality,
		Defect:   q.Defect - other.Defect,
	}
}

func (q Quantities) String() string {
	return fmt.Sprintf("produced=%d quality=%d defect=%d", q.Produced, q.Quality, q.Defect)
}

// ApplyDelta returns the counters after applying delta, or a validation error.
// Zero deltas are rejected. A negative component may remove at most what is
// currently recorded for that counter, so no counter can drop below zero.
func ApplyDelta(current, delta Quantities) (Quantities, error) {
	if err := delta.Validate(); err != nil {
		return Quantities{}, err
	}
	if delta.IsZero() {
		return Quantities{}, NewValidationError("quantities", "registration delta must not be zero")
	}
	if delta.Quality < 0 && -delta.Quality > current.Quality {
		return Quantities{}, NewValidationError("qualityQuantity", fmt.Sprintf(
			"correction of %d exceeds recorded quality quantity %d", -delta.Quality, current.Quality))
	}
	if delta.Defect < 0 && -delta.Defect > current.Defect {
		return Quantities{}, NewValidationError("defectQuantity", fmt.Sprintf(
			"correction of %d exceeds recorded defect quantity %d", -delta.Defect, current.Defect))
	}
	if delta.Produced < 0 && -delta.Produced > current.Produced {
		return Quantities{}, NewValidationError("producedQuantity", fmt.Sprintf(
			"correction of %d exceeds recorded produced quantity %d", -delta.Produced, current.Produced))
	}
	return current.Add(delta), nil
}

// Overproduction is the quality output above the requested quantity
func Overproduction(quality, requested int) int {
	if quality <= requested {
		return 0
	}
	return quality - requested
}

// OverproductionDelta is the change in overproduction caused by moving quality
// from before to after. Negative when a correction removes surplus.
func OverproductionDelta(before, after, requested int) int {
	return Overproduction(after, requested) - Overproduction(before, requested)
}

// Remaining is how much quality output the task still needs
func Remaining(quality, requested int) int {
	if quality >= requested {
		return 0
	}
	return requested - quality
}
