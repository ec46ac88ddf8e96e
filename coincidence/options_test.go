package coincidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptionsValid(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"nmax zero", func(o *Options) { o.NMax = 0 }},
		{"nmin negative", func(o *Options) { o.NMin = -1 }},
		{"nmin above nmax", func(o *Options) { o.NMin = o.NMax + 1 }},
		{"zero tolerance", func(o *Options) { o.Tolerance = 0 }},
		{"weight above one", func(o *Options) { o.Weight = 1.5 }},
		{"negative weight", func(o *Options) { o.Weight = -0.1 }},
		{"zero step", func(o *Options) { o.AngleStep = 0 }},
		{"reversed limits", func(o *Options) { o.AngleMin, o.AngleMax = 30, 10 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.mutate(&o)
			assert.ErrorIs(t, o.Validate(), ErrInvalidOptions)
		})
	}
}

func TestValidateExplicitAnglesIgnoreRange(t *testing.T) {
	o := DefaultOptions()
	o.AngleStep = 0
	o.Angles = []float64{10, 20}
	assert.NoError(t, o.Validate())
}

func TestAngleList(t *testing.T) {
	angles := AngleList(DefaultOptions())
	require.Len(t, angles, 91)
	assert.Equal(t, 0.0, angles[0])
	assert.Equal(t, 90.0, angles[90])

	o := DefaultOptions()
	o.AngleMin, o.AngleMax, o.AngleStep = 0, 1, 0.1
	angles = AngleList(o)
	require.Len(t, angles, 11)
	assert.InDelta(t, 1.0, angles[10], 1e-12)

	o.Angles = []float64{21.79, 13.17}
	angles = AngleList(o)
	assert.Equal(t, []float64{21.79, 13.17}, angles)
	angles[0] = 0
	assert.Equal(t, 21.79, o.Angles[0], "AngleList must not alias Options.Angles")
}

func TestLadderTolerances(t *testing.T) {
	got := DefaultLadder().Tolerances()
	want := []float64{0.05, 0.1, 0.15, 0.2}
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12)
	}

	assert.Empty(t, Ladder{Step: 0, Max: 1}.Tolerances())
	assert.Empty(t, Ladder{Step: 0.5, Max: 0.1}.Tolerances())
}
