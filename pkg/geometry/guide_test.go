package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeGuide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                string
		screenW, screenH    float64
		wantWidth, wantHght float64
	}{
		{"narrow phone", 400, 800, 280, 350},
		{"wide tablet hits width cap", 1000, 1400, 320, 400},
		{"short screen reclamps from height", 400, 400, 208, 260},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ComputeGuide(tt.screenW, tt.screenH, DefaultGuideParams())
			require.NoError(t, err)
			assert.InDelta(t, tt.wantWidth, g.Width, 1e-9)
			assert.InDelta(t, tt.wantHght, g.Height, 1e-9)
			assert.InDelta(t, tt.screenW/2, g.Pixels.CX, 1e-9)
			assert.InDelta(t, tt.screenH/2, g.Pixels.CY, 1e-9)
			assert.InDelta(t, g.Width/2/tt.screenW, g.Normalized.RX, 1e-9)
			assert.InDelta(t, g.Height/2/tt.screenH, g.Normalized.RY, 1e-9)
			assert.InDelta(t, 1.25, g.Height/g.Width, 1e-9)
		})
	}
}

func TestComputeGuide_InvalidScreen(t *testing.T) {
	_, err := ComputeGuide(0, 800, DefaultGuideParams())
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ComputeGuide(400, -5, DefaultGuideParams())
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ComputeGuide(400, 800, GuideParams{WidthRatio: 0.7, MaxWidth: 320})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
