package livenessService

import (
	"ProjectLiveness/internal/api/liveness"
	"ProjectLiveness/internal/entity"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frameStepMs = 30

func positioned(x, y float64) entity.Classification {
	return entity.Classification{
		InsideOval: true,
		Inside:     true,
		Distance:   entity.DistanceOK,
		CenterX:    x,
		CenterY:    y,
	}
}

func outsideGuide() entity.Classification {
	return entity.Classification{InsideOval: false, Distance: entity.DistanceOK}
}

func withDistance(d entity.Distance) entity.Classification {
	return entity.Classification{InsideOval: true, Distance: d, CenterX: 240, CenterY: 320}
}

func angles(yaw, pitch, roll float64) entity.FaceObservation {
	return entity.FaceObservation{Yaw: &yaw, Pitch: &pitch, Roll: &roll}
}

func TestSnapshotPolicy_HoldStillReachesSuccessOnce(t *testing.T) {
	p := NewSnapshotPolicy(liveness.DefaultConfig())

	var phases []entity.Phase
	fired := 0
	firstSuccessAt := int64(-1)

	for now := int64(0); now <= 3100; now += frameStepMs {
		res := p.Evaluate(entity.FaceObservation{}, positioned(240, 320), now)
		phases = append(phases, res.Phase)
		if res.SuccessFired {
			fired++
		}
		if res.Phase == entity.PhaseSuccess && firstSuccessAt < 0 {
			firstSuccessAt = now
		}
	}

	want := []entity.Phase{entity.PhaseHoldStill, entity.PhaseHoldStill, entity.PhaseHoldStill}
	if diff := cmp.Diff(want, phases[:3]); diff != "" {
		t.Errorf("first phases mismatch (-want +got):\n%s", diff)
	}

	// snapshot taken on the second frame (t=30), so the dwell completes at t=3030
	assert.Equal(t, int64(3030), firstSuccessAt)
	assert.Equal(t, 1, fired)
	assert.Equal(t, entity.PhaseSuccess, p.Phase())
}

func TestSnapshotPolicy_ProgressGrows(t *testing.T) {
	p := NewSnapshotPolicy(liveness.DefaultConfig())
	face := entity.FaceObservation{}

	p.Evaluate(face, positioned(240, 320), 0)
	res := p.Evaluate(face, positioned(240, 320), 100)
	assert.Equal(t, 0.0, res.Progress)

	res = p.Evaluate(face, positioned(240, 320), 1600)
	assert.InDelta(t, 0.5, res.Progress, 1e-9)
	assert.Equal(t, entity.FeedbackHoldStill, res.Feedback)
}

func TestSnapshotPolicy_MovementRearmsTimer(t *testing.T) {
	p := NewSnapshotPolicy(liveness.DefaultConfig())
	face := entity.FaceObservation{}

	now := int64(0)
	for ; now <= 1500; now += frameStepMs {
		res := p.Evaluate(face, positioned(240, 320), now)
		require.NotEqual(t, entity.PhaseSuccess, res.Phase)
	}

	jumpAt := now
	res := p.Evaluate(face, positioned(260, 320), jumpAt)
	assert.Equal(t, entity.PhaseHoldStill, res.Phase, "movement must not regress to POSITION")
	assert.Equal(t, 0.0, res.Progress)

	var successAt int64 = -1
	for now = jumpAt + frameStepMs; now <= jumpAt+3100; now += frameStepMs {
		res = p.Evaluate(face, positioned(260, 320), now)
		if res.SuccessFired {
			successAt = now
			break
		}
		require.Equal(t, entity.PhaseHoldStill, res.Phase)
	}

	assert.Equal(t, jumpAt+3000, successAt)
}

func TestSnapshotPolicy_Tolerances(t *testing.T) {
	tests := []struct {
		name      string
		x, y      float64
		face      entity.FaceObservation
		wantRearm bool
	}{
		{"within position tolerance", 252, 308, angles(0, 0, 0), false},
		{"x beyond tolerance", 252.5, 320, angles(0, 0, 0), true},
		{"y beyond tolerance", 240, 333, angles(0, 0, 0), true},
		{"yaw within tolerance", 240, 320, angles(4, 0, 0), false},
		{"yaw beyond tolerance", 240, 320, angles(4.5, 0, 0), true},
		{"pitch beyond tolerance", 240, 320, angles(0, -5, 0), true},
		{"roll beyond tolerance", 240, 320, angles(0, 0, 6), true},
		{"angles missing on current frame", 240, 320, entity.FaceObservation{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewSnapshotPolicy(liveness.DefaultConfig())
			p.Evaluate(angles(0, 0, 0), positioned(240, 320), 0)
			p.Evaluate(angles(0, 0, 0), positioned(240, 320), 30)

			res := p.Evaluate(tt.face, positioned(tt.x, tt.y), 2030)
			require.Equal(t, entity.PhaseHoldStill, res.Phase)
			if tt.wantRearm {
				assert.Equal(t, 0.0, res.Progress)
				assert.Equal(t, int64(2030), p.steadySince)
			} else {
				assert.InDelta(t, 2000.0/3000.0, res.Progress, 1e-9)
				assert.Equal(t, int64(30), p.steadySince)
			}
		})
	}
}

func TestSnapshotPolicy_LeavingGuideResets(t *testing.T) {
	p := NewSnapshotPolicy(liveness.DefaultConfig())
	face := entity.FaceObservation{}

	p.Evaluate(face, positioned(240, 320), 0)
	p.Evaluate(face, positioned(240, 320), 30)
	p.Evaluate(face, positioned(240, 320), 2000)

	res := p.Evaluate(face, outsideGuide(), 2030)
	assert.Equal(t, entity.PhasePosition, res.Phase)
	assert.Equal(t, entity.FeedbackKeepInside, res.Feedback)
	assert.Nil(t, p.snapshot)

	// back inside: one frame to re-enter HOLD_STILL, then a full dwell again
	res = p.Evaluate(face, positioned(240, 320), 2060)
	assert.Equal(t, entity.PhaseHoldStill, res.Phase)
	res = p.Evaluate(face, positioned(240, 320), 2090)
	assert.Equal(t, 0.0, res.Progress)
	res = p.Evaluate(face, positioned(240, 320), 5089)
	assert.False(t, res.SuccessFired)
	res = p.Evaluate(face, positioned(240, 320), 5090)
	assert.True(t, res.SuccessFired)
}

func TestSnapshotPolicy_DistanceResets(t *testing.T) {
	tests := []struct {
		distance entity.Distance
		want     entity.Feedback
	}{
		{entity.DistanceTooFar, entity.FeedbackMoveCloser},
		{entity.DistanceTooClose, entity.FeedbackMoveBack},
	}

	for _, tt := range tests {
		t.Run(string(tt.distance), func(t *testing.T) {
			p := NewSnapshotPolicy(liveness.DefaultConfig())
			p.Evaluate(entity.FaceObservation{}, positioned(240, 320), 0)
			p.Evaluate(entity.FaceObservation{}, positioned(240, 320), 30)

			res := p.Evaluate(entity.FaceObservation{}, withDistance(tt.distance), 60)
			assert.Equal(t, entity.PhasePosition, res.Phase)
			assert.Equal(t, tt.want, res.Feedback)
			assert.Equal(t, entity.PhasePosition, p.Phase())
		})
	}
}

func TestSnapshotPolicy_NeverInside(t *testing.T) {
	p := NewSnapshotPolicy(liveness.DefaultConfig())

	for now := int64(0); now <= 10000; now += frameStepMs {
		res := p.Evaluate(entity.FaceObservation{}, outsideGuide(), now)
		require.Equal(t, entity.PhasePosition, res.Phase)
		require.Equal(t, entity.FeedbackKeepInside, res.Feedback)
		require.False(t, res.SuccessFired)
	}
}

func TestSnapshotPolicy_SuccessIsTerminal(t *testing.T) {
	p := NewSnapshotPolicy(liveness.DefaultConfig())
	face := entity.FaceObservation{}

	p.Evaluate(face, positioned(240, 320), 0)
	p.Evaluate(face, positioned(240, 320), 30)
	res := p.Evaluate(face, positioned(240, 320), 3030)
	require.True(t, res.SuccessFired)

	for _, c := range []entity.Classification{outsideGuide(), withDistance(entity.DistanceTooFar), positioned(400, 400)} {
		res = p.Evaluate(face, c, 4000)
		assert.Equal(t, entity.PhaseSuccess, res.Phase)
		assert.False(t, res.SuccessFired)
	}

	p.Reset()
	assert.Equal(t, entity.PhasePosition, p.Phase())
}

func TestNewStabilityPolicy(t *testing.T) {
	cfg := liveness.DefaultConfig()

	p, err := NewStabilityPolicy(entity.PolicySnapshot, cfg)
	require.NoError(t, err)
	assert.Equal(t, entity.PolicySnapshot, p.Name())

	p, err = NewStabilityPolicy(entity.PolicyDebounce, cfg)
	require.NoError(t, err)
	assert.Equal(t, entity.PolicyDebounce, p.Name())

	_, err = NewStabilityPolicy("bogus", cfg)
	assert.ErrorIs(t, err, liveness.ErrInvalidPolicy)
}
