package entity

import "ProjectLiveness/pkg/geometry"

// FaceObservation is one detected face in one camera frame. Angles are in
// degrees and are nil when the detector does not report them.
type FaceObservation struct {
	Bounds geometry.Rect `json:"bounds"`
	Yaw    *float64      `json:"yaw,omitempty"`
	Pitch  *float64      `json:"pitch,omitempty"`
	Roll   *float64      `json:"roll,omitempty"`
}

type FrameSize struct {
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

// FrameObservation is everything the detector reported for a single frame.
type FrameObservation struct {
	TimestampMs int64             `json:"timestamp_ms"`
	Frame       FrameSize         `json:"frame"`
	Faces       []FaceObservation `json:"faces"`
}

type Distance string

const (
	DistanceOK       Distance = "ok"
	DistanceTooFar   Distance = "too-far"
	DistanceTooClose Distance = "too-close"
)

// Classification is the per-frame verdict on a face against the guide oval.
type Classification struct {
	InsideOval       bool                    `json:"inside_oval"`
	Inside           bool                    `json:"inside"`
	Distance         Distance                `json:"distance"`
	FaceSize         float64                 `json:"face_size"`
	Score            float64                 `json:"score"`
	CenterX          float64                 `json:"center_x"`
	CenterY          float64                 `json:"center_y"`
	NormalizedCenter geometry.NormalizedRect `json:"normalized"`
}
