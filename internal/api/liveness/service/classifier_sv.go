package livenessService

import (
	"ProjectLiveness/internal/api/liveness"
	"ProjectLiveness/internal/entity"
	"ProjectLiveness/pkg/geometry"
	"fmt"
	"math"
)

type Classifier struct {
	minFaceSize      float64
	maxFaceSize      float64
	ellipseTolerance float64
	mirrored         bool
}

func NewClassifier(cfg liveness.Config, mirrored bool) *Classifier {
	return &Classifier{
		minFaceSize:      cfg.MinFaceSize,
		maxFaceSize:      cfg.MaxFaceSize,
		ellipseTolerance: cfg.EllipseTolerance,
		mirrored:         mirrored,
	}
}

// Classify checks one face against the normalized guide oval. The returned pixel
// center has the mirroring correction applied and is what movement deltas are
// measured on.
func (c *Classifier) Classify(face entity.FaceObservation, oval geometry.Oval, frame entity.FrameSize) (entity.Classification, error) {
	bounds := face.Bounds
	if c.mirrored {
		bounds.X = frame.Width - bounds.X - bounds.Width
	}

	normalized, err := geometry.Normalize(bounds, frame.Width, frame.Height)
	if err != nil {
		return entity.Classification{}, fmt.Errorf("%w: %w", liveness.ErrInvalidArgument, err)
	}

	cx, cy := bounds.Center()
	faceSize := math.Max(normalized.Width, normalized.Height)

	distance := entity.DistanceOK
	switch {
	case faceSize < c.minFaceSize:
		distance = entity.DistanceTooFar
	case faceSize > c.maxFaceSize:
		distance = entity.DistanceTooClose
	}

	score := geometry.EllipseScore(normalized.CX, normalized.CY, oval)
	insideOval := score <= c.ellipseTolerance

	return entity.Classification{
		InsideOval:       insideOval,
		Inside:           insideOval && distance == entity.DistanceOK,
		Distance:         distance,
		FaceSize:         faceSize,
		Score:            score,
		CenterX:          cx,
		CenterY:          cy,
		NormalizedCenter: normalized,
	}, nil
}
