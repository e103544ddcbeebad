package main

import (
	"ProjectLiveness/internal/entity"
	"ProjectLiveness/pkg/geometry"
	"time"
)

var cameraFrame = entity.FrameSize{Width: 480, Height: 640}

type scenario func(frame int, nowMs int64) []entity.FaceObservation

var scenarios = map[string]scenario{
	// a well placed face that barely moves
	"still": func(frame int, _ int64) []entity.FaceObservation {
		jitter := float64(frame%3) - 1
		return faceAt(240+jitter, 320-jitter, 216, 260)
	},
	// holds still, jumps 20px halfway through the dwell, then holds again
	"jump": func(_ int, nowMs int64) []entity.FaceObservation {
		if nowMs < 1500 {
			return faceAt(240, 320, 216, 260)
		}
		return faceAt(260, 320, 216, 260)
	},
	// right size, but off to the side of the guide
	"outside": func(int, int64) []entity.FaceObservation {
		return faceAt(60, 320, 216, 260)
	},
	// centered, but too small
	"far": func(int, int64) []entity.FaceObservation {
		return faceAt(240, 320, 100, 120)
	},
	// face disappears every other second
	"flicker": func(_ int, nowMs int64) []entity.FaceObservation {
		if (nowMs/1000)%2 == 1 {
			return nil
		}
		return faceAt(240, 320, 216, 260)
	},
}

func faceAt(cx, cy, w, h float64) []entity.FaceObservation {
	return []entity.FaceObservation{{
		Bounds: geometry.Rect{X: cx - w/2, Y: cy - h/2, Width: w, Height: h},
	}}
}

func frameAt(play scenario, frame int, nowMs int64) entity.FrameObservation {
	return entity.FrameObservation{
		TimestampMs: nowMs,
		Frame:       cameraFrame,
		Faces:       play(frame, nowMs),
	}
}

// sequence renders a scenario on an ideal clock: frame i is stamped i*interval.
func sequence(play scenario, interval, duration time.Duration) []entity.FrameObservation {
	var out []entity.FrameObservation
	for i := 0; time.Duration(i)*interval <= duration; i++ {
		out = append(out, frameAt(play, i, (time.Duration(i) * interval).Milliseconds()))
	}
	return out
}
