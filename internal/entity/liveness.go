package entity

type Phase string

const (
	PhasePosition  Phase = "POSITION"
	PhaseHoldStill Phase = "HOLD_STILL"
	PhaseSuccess   Phase = "SUCCESS"
)

func (p Phase) Terminal() bool {
	return p == PhaseSuccess
}

type PolicyKind string

const (
	PolicySnapshot PolicyKind = "snapshot"
	PolicyDebounce PolicyKind = "debounce"
)

var PolicyKindMap = map[string]PolicyKind{
	"snapshot": PolicySnapshot,
	"debounce": PolicyDebounce,
}

// Feedback identifies a user-facing instruction; the text comes from a locale catalog.
type Feedback string

const (
	FeedbackKeepInside Feedback = "keep-inside"
	FeedbackMoveCloser Feedback = "move-closer"
	FeedbackMoveBack   Feedback = "move-back"
	FeedbackHoldStill  Feedback = "hold-still"
	FeedbackConfirmed  Feedback = "confirmed"
	FeedbackNoFace     Feedback = "no-face"
	FeedbackTimeout    Feedback = "timeout"
)

type StabilityResult struct {
	Phase        Phase
	Feedback     Feedback
	Progress     float64
	SuccessFired bool
}

// Status is what the UI side renders after each processed frame.
type Status struct {
	SessionID   string          `json:"session_id"`
	Seq         uint64          `json:"seq"`
	TimestampMs int64           `json:"timestamp_ms"`
	Policy      PolicyKind      `json:"policy"`
	Phase       Phase           `json:"phase"`
	Feedback    Feedback        `json:"feedback"`
	Message     string          `json:"message"`
	Progress    float64         `json:"progress"`
	FaceFound   bool            `json:"face_found"`
	Result      *Classification `json:"classification,omitempty"`
	Attestation string          `json:"attestation,omitempty"`
}
