package livenessService

import (
	"ProjectLiveness/internal/api/liveness"
	"ProjectLiveness/internal/entity"
)

// DebouncePolicy trusts N consecutive accepted frames as proof of stability
// instead of measuring jitter. The dwell timer starts on the frame that reaches
// the threshold and success fires when progress reaches 1.
type DebouncePolicy struct {
	threshold int
	dwellMs   int64

	phase       entity.Phase
	consecutive int
	steadySince int64
	progress    float64
}

func NewDebouncePolicy(cfg liveness.Config) *DebouncePolicy {
	return &DebouncePolicy{
		threshold: cfg.DebounceFrames,
		dwellMs:   cfg.DwellMs,
		phase:     entity.PhasePosition,
	}
}

func (p *DebouncePolicy) Name() entity.PolicyKind { return entity.PolicyDebounce }
func (p *DebouncePolicy) Phase() entity.Phase     { return p.phase }

func (p *DebouncePolicy) Consecutive() int { return p.consecutive }

func (p *DebouncePolicy) Reset() {
	p.phase = entity.PhasePosition
	p.consecutive = 0
	p.steadySince = 0
	p.progress = 0
}

func (p *DebouncePolicy) Evaluate(_ entity.FaceObservation, c entity.Classification, nowMs int64) entity.StabilityResult {
	if p.phase == entity.PhaseSuccess {
		return successResult(false)
	}

	if feedback, ok := positionFeedback(c); !ok {
		p.Reset()
		return entity.StabilityResult{Phase: entity.PhasePosition, Feedback: feedback}
	}

	if p.consecutive < p.threshold {
		p.consecutive++
		if p.consecutive < p.threshold {
			return entity.StabilityResult{Phase: entity.PhasePosition, Feedback: entity.FeedbackHoldStill}
		}
		p.phase = entity.PhaseHoldStill
		p.steadySince = nowMs
	}

	p.progress = dwellProgress(nowMs-p.steadySince, p.dwellMs)
	if p.progress >= 1 {
		p.phase = entity.PhaseSuccess
		return successResult(true)
	}

	return entity.StabilityResult{
		Phase:    entity.PhaseHoldStill,
		Feedback: entity.FeedbackHoldStill,
		Progress: p.progress,
	}
}
