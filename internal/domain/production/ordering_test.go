package production_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
)

func TestApplyReorder(t *testing.T) {
	a, b, c := newTask(t, 1), newTask(t, 1), newTask(t, 1)

	ordered, err := production.ApplyReorder([]*production.ProductionTask{a, b, c}, []string{c.ID(), a.ID(), b.ID()}, baseTime)

	require.NoError(t, err)
	require.Len(t, ordered, 3)
	assert.Equal(t, 1, c.SortOrder())
	assert.Equal(t, 2, a.SortOrder())
	assert.Equal(t, 3, b.SortOrder())
}

func TestApplyReorder_ScopeMismatch(t *testing.T) {
	a, b := newTask(t, 1), newTask(t, 1)
	pending := []*production.ProductionTask{a, b}

	tests := []struct {
		name string
		ids  []string
	}{
		{"missing task", []string{a.ID()}},
		{"duplicate", []string{a.ID(), a.ID()}},
		{"unknown task", []string{a.ID(), "other"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := production.ApplyReorder(pending, tt.ids, baseTime)
			require.Error(t, err)
			assert.True(t, production.IsValidationError(err))
			assert.Equal(t, 0, a.SortOrder())
			assert.Equal(t, 0, b.SortOrder())
		})
	}
}

func TestApplyReorder_RejectsStartedTask(t *testing.T) {
	a := newTask(t, 1)
	require.NoError(t, a.Start("bob", baseTime))

	_, err := production.ApplyReorder([]*production.ProductionTask{a}, []string{a.ID()}, baseTime)

	assert.True(t, production.IsStateError(err))
}

func TestNextSortOrder(t *testing.T) {
	assert.Equal(t, 1, production.NextSortOrder(nil))

	a, b := newTask(t, 1), newTask(t, 1)
	_, err := production.ApplyReorder([]*production.ProductionTask{a, b}, []string{a.ID(), b.ID()}, baseTime)
	require.NoError(t, err)

	assert.Equal(t, 3, production.NextSortOrder([]*production.ProductionTask{a, b}))
}

func TestTaskStatus_Lookup(t *testing.T) {
	assert.Len(t, production.AllTaskStatuses(), production.TaskStatusCount)
	for i, s := range production.AllTaskStatuses() {
		assert.Equal(t, i, s.Ordinal())
		parsed, err := production.ParseTaskStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	_, err := production.ParseTaskStatus("archived")
	assert.Error(t, err)
	assert.Equal(t, -1, production.TaskStatus("archived").Ordinal())
}
