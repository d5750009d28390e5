package board

import "github.com/andrescamacho/shopfloor-go/internal/domain/production"

// Tone is a rendering hint. Surfaces map it to their own palette.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneInfo
	ToneWarning
	ToneSuccess
	ToneDanger
)

// Descriptor is the display label of a status or priority
type Descriptor struct {
	Label string
	Short string
	Tone  Tone
}

var statusDescriptors = [...]Descriptor{
	{Label: "Pending", Short: "PEND", Tone: ToneNeutral},
	{Label: "In progress", Short: "RUN", Tone: ToneInfo},
	{Label: "Paused", Short: "PAUS", Tone: ToneWarning},
	{Label: "Completed", Short: "DONE", Tone: ToneSuccess},
	{Label: "Cancelled", Short: "CANC", Tone: ToneDanger},
}

var priorityDescriptors = [...]Descriptor{
	{Label: "Low", Short: "P1", Tone: ToneNeutral},
	{Label: "Below normal", Short: "P2", Tone: ToneNeutral},
	{Label: "Normal", Short: "P3", Tone: ToneInfo},
	{Label: "High", Short: "P4", Tone: ToneWarning},
	{Label: "Critical", Short: "P5", Tone: ToneDanger},
}

// Both tables must stay in step with the domain enums.
var (
	_ = [1]struct{}{}[len(statusDescriptors)-production.TaskStatusCount]
	_ = [1]struct{}{}[len(priorityDescriptors)-production.PriorityCount]
)

var unknownDescriptor = Descriptor{Label: "Unknown", Short: "?", Tone: ToneNeutral}

// DescribeStatus returns the label for a raw status value
func DescribeStatus(status string) Descriptor {
	i := production.TaskStatus(status).Ordinal()
	if i < 0 {
		return unknownDescriptor
	}
	return statusDescriptors[i]
}

// DescribePriority returns the label for a raw priority value
func DescribePriority(priority int) Descriptor {
	p := production.Priority(priority)
	if !p.IsValid() {
		return unknownDescriptor
	}
	return priorityDescriptors[p.Ordinal()]
}
