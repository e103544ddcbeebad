package livenessService

import (
	"ProjectLiveness/internal/api/liveness"
	"ProjectLiveness/internal/entity"
	"math"
)

// StabilityPolicy decides, frame by frame, when a correctly positioned face has
// been held long enough to confirm liveness. Implementations keep only a handful
// of fields and do no I/O, so Evaluate is safe to call on the frame goroutine.
// They are not safe for concurrent use.
type StabilityPolicy interface {
	Evaluate(face entity.FaceObservation, c entity.Classification, nowMs int64) entity.StabilityResult
	Reset()
	Phase() entity.Phase
	Name() entity.PolicyKind
}

func NewStabilityPolicy(kind entity.PolicyKind, cfg liveness.Config) (StabilityPolicy, error) {
	switch kind {
	case entity.PolicySnapshot:
		return NewSnapshotPolicy(cfg), nil
	case entity.PolicyDebounce:
		return NewDebouncePolicy(cfg), nil
	default:
		return nil, liveness.ErrInvalidPolicy
	}
}

// positionFeedback returns the instruction for a face that is not usable yet.
// ok is true when the face is inside the oval at the right distance.
func positionFeedback(c entity.Classification) (entity.Feedback, bool) {
	if !c.InsideOval {
		return entity.FeedbackKeepInside, false
	}

	switch c.Distance {
	case entity.DistanceTooFar:
		return entity.FeedbackMoveCloser, false
	case entity.DistanceTooClose:
		return entity.FeedbackMoveBack, false
	}

	return "", true
}

func dwellProgress(elapsedMs, dwellMs int64) float64 {
	if elapsedMs <= 0 {
		return 0
	}
	return math.Min(float64(elapsedMs)/float64(dwellMs), 1)
}

func successResult(fired bool) entity.StabilityResult {
	return entity.StabilityResult{
		Phase:        entity.PhaseSuccess,
		Feedback:     entity.FeedbackConfirmed,
		Progress:     1,
		SuccessFired: fired,
	}
}

type faceSnapshot struct {
	x, y             float64
	yaw, pitch, roll *float64
}

// SnapshotPolicy confirms liveness once the face stays within a position and
// angle tolerance of a reference snapshot for the whole dwell time. Any movement
// past the tolerance re-arms the timer against a new snapshot without leaving
// HOLD_STILL; losing the guide or the right distance resets to POSITION.
type SnapshotPolicy struct {
	dwellMs           int64
	positionTolerance float64
	angleTolerance    float64

	phase       entity.Phase
	snapshot    *faceSnapshot
	steadySince int64
}

func NewSnapshotPolicy(cfg liveness.Config) *SnapshotPolicy {
	return &SnapshotPolicy{
		dwellMs:           cfg.DwellMs,
		positionTolerance: cfg.PositionTolerancePx,
		angleTolerance:    cfg.AngleToleranceDeg,
		phase:             entity.PhasePosition,
	}
}

func (p *SnapshotPolicy) Name() entity.PolicyKind { return entity.PolicySnapshot }
func (p *SnapshotPolicy) Phase() entity.Phase     { return p.phase }

func (p *SnapshotPolicy) Reset() {
	p.phase = entity.PhasePosition
	p.snapshot = nil
	p.steadySince = 0
}

func (p *SnapshotPolicy) Evaluate(face entity.FaceObservation, c entity.Classification, nowMs int64) entity.StabilityResult {
	if p.phase == entity.PhaseSuccess {
		return successResult(false)
	}

	if feedback, ok := positionFeedback(c); !ok {
		p.Reset()
		return entity.StabilityResult{Phase: entity.PhasePosition, Feedback: feedback}
	}

	if p.phase == entity.PhasePosition {
		// the timer starts on the next accepted frame
		p.phase = entity.PhaseHoldStill
		p.snapshot = nil
		p.steadySince = 0
		return entity.StabilityResult{Phase: entity.PhaseHoldStill, Feedback: entity.FeedbackHoldStill}
	}

	current := faceSnapshot{
		x:     c.CenterX,
		y:     c.CenterY,
		yaw:   face.Yaw,
		pitch: face.Pitch,
		roll:  face.Roll,
	}

	if p.snapshot == nil || p.moved(current) {
		p.snapshot = &current
		p.steadySince = nowMs
		return entity.StabilityResult{Phase: entity.PhaseHoldStill, Feedback: entity.FeedbackHoldStill}
	}

	elapsed := nowMs - p.steadySince
	if elapsed >= p.dwellMs {
		p.phase = entity.PhaseSuccess
		return successResult(true)
	}

	return entity.StabilityResult{
		Phase:    entity.PhaseHoldStill,
		Feedback: entity.FeedbackHoldStill,
		Progress: dwellProgress(elapsed, p.dwellMs),
	}
}

func (p *SnapshotPolicy) moved(current faceSnapshot) bool {
	if math.Abs(current.x-p.snapshot.x) > p.positionTolerance ||
		math.Abs(current.y-p.snapshot.y) > p.positionTolerance {
		return true
	}

	return angleMoved(p.snapshot.yaw, current.yaw, p.angleTolerance) ||
		angleMoved(p.snapshot.pitch, current.pitch, p.angleTolerance) ||
		angleMoved(p.snapshot.roll, current.roll, p.angleTolerance)
}

// angleMoved only compares angles both frames reported.
func angleMoved(ref, current *float64, tolerance float64) bool {
	if ref == nil || current == nil {
		return false
	}
	return math.Abs(*current-*ref) > tolerance
}
