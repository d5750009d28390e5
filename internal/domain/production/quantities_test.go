package production_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
)

func intPtr(v int) *int { return &v }

func TestNewQuantities(t *testing.T) {
	q, err := production.NewQuantities(nil, 8, 2)
	require.NoError(t, err)
	assert.Equal(t, production.Quantities{Produced: 10, Quality: 8, Defect: 2}, q)

	q, err = production.NewQuantities(intPtr(10), 8, 2)
	require.NoError(t, err)
	assert.Equal(t, 10, q.Produced)

	_, err = production.NewQuantities(intPtr(11), 8, 2)
	assert.True(t, production.IsValidationError(err))
}

func TestApplyDelta(t *testing.T) {
	current := production.Quantities{Produced: 10, Quality: 7, Defect: 3}

	tests := []struct {
		name    string
		delta   production.Quantities
		want    production.Quantities
		wantErr bool
	}{
		{"addition", production.Quantities{Produced: 5, Quality: 4, Defect: 1}, production.Quantities{Produced: 15, Quality: 11, Defect: 4}, false},
		{"full quality correction", production.Quantities{Produced: -7, Quality: -7}, production.Quantities{Produced: 3, Quality: 0, Defect: 3}, false},
		{"reclassify defect as quality", production.Quantities{Quality: 2, Defect: -2}, production.Quantities{Produced: 10, Quality: 9, Defect: 1}, false},
		{"quality correction too large", production.Quantities{Produced: -8, Quality: -8}, production.Quantities{}, true},
		{"defect correction too large", production.Quantities{Produced: -4, Defect: -4}, production.Quantities{}, true},
		{"zero", production.Quantities{}, production.Quantities{}, true},
		{"inconsistent", production.Quantities{Produced: 1, Quality: 1, Defect: 1}, production.Quantities{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := production.ApplyDelta(current, tt.delta)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, production.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got.Produced, 0)
			assert.GreaterOrEqual(t, got.Quality, 0)
			assert.GreaterOrEqual(t, got.Defect, 0)
		})
	}
}

func TestOverproduction(t *testing.T) {
	assert.Equal(t, 0, production.Overproduction(90, 100))
	assert.Equal(t, 0, production.Overproduction(100, 100))
	assert.Equal(t, 10, production.Overproduction(110, 100))

	assert.Equal(t, 10, production.OverproductionDelta(60, 110, 100))
	assert.Equal(t, 5, production.OverproductionDelta(105, 110, 100))
	assert.Equal(t, -10, production.OverproductionDelta(110, 90, 100))
	assert.Equal(t, 0, production.OverproductionDelta(10, 90, 100))
}

func TestQuantities_Classification(t *testing.T) {
	assert.True(t, production.Quantities{Produced: -1, Quality: -1}.IsCorrection())
	assert.False(t, production.Quantities{Quality: 1, Defect: -1}.IsCorrection())
	assert.False(t, production.Quantities{}.IsCorrection())
	assert.True(t, production.Quantities{Produced: 1, Defect: 1}.IsAddition())
}
