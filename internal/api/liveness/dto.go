package liveness

import (
	"ProjectLiveness/internal/entity"
	"ProjectLiveness/pkg/geometry"
)

type ScreenSize struct {
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

type GuideRequest struct {
	ScreenWidth  float64 `json:"screen_width" validate:"gt=0"`
	ScreenHeight float64 `json:"screen_height" validate:"gt=0"`
}

type GuideResponse struct {
	Data geometry.Guide `json:"data"`
}

type ClassifyRequest struct {
	Screen   ScreenSize             `json:"screen"`
	Frame    entity.FrameSize       `json:"frame"`
	Face     entity.FaceObservation `json:"face"`
	Mirrored *bool                  `json:"mirrored,omitempty"`
}

type ClassifyResponse struct {
	Data  entity.Classification `json:"data"`
	Guide geometry.Guide        `json:"guide"`
}

// SessionRequest is read from the query string before the websocket upgrade.
type SessionRequest struct {
	ScreenWidth  float64 `query:"screen_width" validate:"gt=0"`
	ScreenHeight float64 `query:"screen_height" validate:"gt=0"`
	Policy       string  `query:"policy"`
	Mirrored     string  `query:"mirrored" validate:"omitempty,boolean"`
	Lang         string  `query:"lang"`
}

type MessageType string

const (
	MessageFrame  MessageType = "frame"
	MessageScreen MessageType = "screen"
	MessageReset  MessageType = "reset"
)

// ClientMessage is one text frame sent by the app over the liveness websocket.
type ClientMessage struct {
	Type        MessageType              `json:"type"`
	TimestampMs int64                    `json:"timestamp_ms,omitempty"`
	Frame       entity.FrameSize         `json:"frame,omitempty"`
	Faces       []entity.FaceObservation `json:"faces,omitempty"`
	Screen      *ScreenSize              `json:"screen,omitempty"`
}

type ErrorMessage struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type VerifyResponse struct {
	SessionID string            `json:"session_id"`
	Policy    entity.PolicyKind `json:"policy"`
	IssuedAt  int64             `json:"issued_at"`
	ExpiresAt int64             `json:"expires_at"`
}
