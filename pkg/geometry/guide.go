package geometry

import (
	"fmt"
	"math"
)

// GuideParams shapes the on-screen guide oval.
type GuideParams struct {
	WidthRatio     float64 `validate:"gt=0,lte=1"`
	MaxWidth       float64 `validate:"gt=0"`
	AspectRatio    float64 `validate:"gt=0"`
	MaxHeightRatio float64 `validate:"gt=0,lte=1"`
}

func DefaultGuideParams() GuideParams {
	return GuideParams{
		WidthRatio:     0.7,
		MaxWidth:       320,
		AspectRatio:    1.25,
		MaxHeightRatio: 0.65,
	}
}

// Guide is the target region, both in screen pixels and normalized to the screen.
type Guide struct {
	ScreenWidth  float64 `json:"screen_width"`
	ScreenHeight float64 `json:"screen_height"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Pixels       Oval    `json:"pixels"`
	Normalized   Oval    `json:"normalized"`
}

// ComputeGuide sizes the oval from the screen: width is capped by both the width
// ratio and MaxWidth, height follows the aspect ratio, and if that is taller than
// MaxHeightRatio of the screen the oval is shrunk from its height instead.
func ComputeGuide(screenWidth, screenHeight float64, p GuideParams) (Guide, error) {
	if screenWidth <= 0 || screenHeight <= 0 {
		return Guide{}, fmt.Errorf("screen size %.0fx%.0f: %w", screenWidth, screenHeight, ErrInvalidArgument)
	}
	if p.AspectRatio <= 0 {
		return Guide{}, fmt.Errorf("aspect ratio %.2f: %w", p.AspectRatio, ErrInvalidArgument)
	}

	width := math.Min(screenWidth*p.WidthRatio, p.MaxWidth)
	height := width * p.AspectRatio

	if maxHeight := screenHeight * p.MaxHeightRatio; height > maxHeight {
		height = maxHeight
		width = height / p.AspectRatio
	}

	cx, cy := screenWidth/2, screenHeight/2
	return Guide{
		ScreenWidth:  screenWidth,
		ScreenHeight: screenHeight,
		Width:        width,
		Height:       height,
		Pixels: Oval{
			CX: cx,
			CY: cy,
			RX: width / 2,
			RY: height / 2,
		},
		Normalized: Oval{
			CX: 0.5,
			CY: 0.5,
			RX: width / 2 / screenWidth,
			RY: height / 2 / screenHeight,
		},
	}, nil
}
