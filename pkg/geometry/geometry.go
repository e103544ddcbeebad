package geometry

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidArgument = errors.New("invalid argument")

// Rect is an axis-aligned box in pixel space, origin at the top-left of the frame.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// NormalizedRect is a Rect expressed as fractions of the frame it was detected in.
type NormalizedRect struct {
	CX     float64 `json:"cx"`
	CY     float64 `json:"cy"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// Oval is an ellipse given by its center and radii. Whether the values are pixels
// or fractions is up to the caller, as long as both sides of a comparison agree.
type Oval struct {
	CX float64 `json:"cx"`
	CY float64 `json:"cy"`
	RX float64 `json:"rx"`
	RY float64 `json:"ry"`
}

func Normalize(bounds Rect, frameWidth, frameHeight float64) (NormalizedRect, error) {
	if frameWidth <= 0 || frameHeight <= 0 {
		return NormalizedRect{}, fmt.Errorf("frame size %.0fx%.0f: %w", frameWidth, frameHeight, ErrInvalidArgument)
	}

	cx, cy := bounds.Center()
	return NormalizedRect{
		CX:     cx / frameWidth,
		CY:     cy / frameHeight,
		Width:  bounds.Width / frameWidth,
		Height: bounds.Height / frameHeight,
	}, nil
}

// EllipseScore returns ((x-cx)/rx)² + ((y-cy)/ry)². Points with a score <= 1 lie
// inside or on the ellipse. A degenerate oval scores +Inf for every point.
func EllipseScore(x, y float64, oval Oval) float64 {
	if oval.RX <= 0 || oval.RY <= 0 {
		return math.Inf(1)
	}

	dx := (x - oval.CX) / oval.RX
	dy := (y - oval.CY) / oval.RY
	return dx*dx + dy*dy
}

func PointInEllipse(x, y float64, oval Oval) bool {
	return EllipseScore(x, y, oval) <= 1
}
