package livenessHandler

import (
	"ProjectLiveness/internal/api/liveness"
	livenessService "ProjectLiveness/internal/api/liveness/service"
	"ProjectLiveness/internal/entity"
	"ProjectLiveness/internal/middleware"
	"ProjectLiveness/pkg/geometry"
	"ProjectLiveness/pkg/handlerUtil"
	jwtPkg "ProjectLiveness/pkg/jwt"
	"ProjectLiveness/pkg/utils"
	websocketPkg "ProjectLiveness/pkg/websocket"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

type testServer struct {
	app         *fiber.App
	attestation jwtPkg.IAttestation
	logger      *logrus.Logger
	wsURL       string
}

func newTestServer(t *testing.T, cfg liveness.Config) *testServer {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	attestation, err := jwtPkg.New("test-secret", cfg.TokenTTL)
	require.NoError(t, err)

	m := middleware.New(logger, attestation, 1000, 1000)
	u := utils.New()
	svc := livenessService.NewLivenessService(logger, cfg, u)

	app := fiber.New()
	app.Use(m.NewRequestIDMiddleware())
	New(logger, validator.New(), m, svc, attestation, u).Start(app.Group("/api/v1"))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = app.Shutdown()
	})

	return &testServer{
		app:         app,
		attestation: attestation,
		logger:      logger,
		wsURL:       "ws://" + ln.Addr().String() + "/api/v1/liveness/ws",
	}
}

func (s *testServer) dial(t *testing.T, q websocketPkg.SessionQuery) websocketPkg.IWebsocket {
	t.Helper()

	endpoint, err := websocketPkg.SessionURL(s.wsURL, q)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := websocketPkg.Dial(ctx, s.logger, endpoint, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func (s *testServer) postJSON(t *testing.T, path string, body interface{}, header http.Header) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	return resp
}

var portraitFrame = entity.FrameSize{Width: 480, Height: 640}

func centeredFace() []entity.FaceObservation {
	return []entity.FaceObservation{{
		Bounds: geometry.Rect{X: 240 - 108, Y: 320 - 130, Width: 216, Height: 260},
	}}
}

func screenQuery() websocketPkg.SessionQuery {
	return websocketPkg.SessionQuery{ScreenWidth: 400, ScreenHeight: 800}
}

// readUntil reads statuses until match returns true or the stream ends.
func readUntil(t *testing.T, client websocketPkg.IWebsocket, match func(*entity.Status) bool) *entity.Status {
	t.Helper()
	for {
		st, err := client.ReadStatus()
		require.NoError(t, err)
		if match(st) {
			return st
		}
	}
}

func TestSession_ConfirmsAndAttests(t *testing.T) {
	srv := newTestServer(t, liveness.DefaultConfig())
	client := srv.dial(t, screenQuery())

	for now := int64(0); now <= 3030; now += 30 {
		require.NoError(t, client.SendFrame(entity.FrameObservation{
			TimestampMs: now,
			Frame:       portraitFrame,
			Faces:       centeredFace(),
		}))
	}

	success := readUntil(t, client, func(st *entity.Status) bool {
		return st.Phase == entity.PhaseSuccess
	})
	assert.Equal(t, entity.FeedbackConfirmed, success.Feedback)
	assert.Equal(t, int64(3030), success.TimestampMs)
	assert.Equal(t, entity.PolicySnapshot, success.Policy)
	require.NotEmpty(t, success.Attestation)

	_, err := client.ReadStatus()
	assert.True(t, websocketPkg.IsNormalClose(err), "expected normal close, got %v", err)

	resp := srv.postJSON(t, "/api/v1/liveness/verify", struct{}{}, http.Header{
		"Authorization": {"Bearer " + success.Attestation},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var verified liveness.VerifyResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&verified))
	assert.Equal(t, success.SessionID, verified.SessionID)
	assert.Equal(t, entity.PolicySnapshot, verified.Policy)
	assert.Greater(t, verified.ExpiresAt, verified.IssuedAt)
}

func TestSession_LocalizedFeedback(t *testing.T) {
	srv := newTestServer(t, liveness.DefaultConfig())
	q := screenQuery()
	q.Lang = "pt-BR"
	q.Policy = entity.PolicyDebounce
	client := srv.dial(t, q)

	require.NoError(t, client.SendFrame(entity.FrameObservation{TimestampMs: 1, Frame: portraitFrame}))

	st, err := client.ReadStatus()
	require.NoError(t, err)
	assert.Equal(t, entity.FeedbackNoFace, st.Feedback)
	assert.Equal(t, "Nenhum rosto detectado", st.Message)
	assert.Equal(t, entity.PolicyDebounce, st.Policy)
	assert.False(t, st.FaceFound)
}

func TestSession_InvalidFrameReportsError(t *testing.T) {
	srv := newTestServer(t, liveness.DefaultConfig())
	client := srv.dial(t, screenQuery())

	require.NoError(t, client.SendFrame(entity.FrameObservation{TimestampMs: 1, Faces: centeredFace()}))

	_, err := client.ReadStatus()
	var remote *websocketPkg.RemoteError
	require.True(t, errors.As(err, &remote), "expected remote error, got %v", err)
	assert.Equal(t, "INVALID_ARGUMENT", remote.Code)

	// the session is still usable
	require.NoError(t, client.SendFrame(entity.FrameObservation{TimestampMs: 2, Frame: portraitFrame, Faces: centeredFace()}))
	st, err := client.ReadStatus()
	require.NoError(t, err)
	assert.Equal(t, entity.PhaseHoldStill, st.Phase)
}

func TestSession_ScreenAndReset(t *testing.T) {
	srv := newTestServer(t, liveness.DefaultConfig())
	client := srv.dial(t, screenQuery())

	require.NoError(t, client.SendFrame(entity.FrameObservation{TimestampMs: 1, Frame: portraitFrame, Faces: centeredFace()}))
	st, err := client.ReadStatus()
	require.NoError(t, err)
	require.Equal(t, entity.PhaseHoldStill, st.Phase)

	require.NoError(t, client.Reset())
	require.NoError(t, client.SendScreen(800, 400))
	require.NoError(t, client.SendFrame(entity.FrameObservation{TimestampMs: 40, Frame: portraitFrame, Faces: centeredFace()}))

	st = readUntil(t, client, func(st *entity.Status) bool { return st.TimestampMs == 40 })
	assert.Equal(t, entity.PhaseHoldStill, st.Phase)
	assert.Equal(t, 0.0, st.Progress)

	require.NoError(t, client.SendScreen(0, 400))
	_, err = client.ReadStatus()
	var remote *websocketPkg.RemoteError
	require.True(t, errors.As(err, &remote), "expected remote error, got %v", err)
	assert.Equal(t, "INVALID_ARGUMENT", remote.Code)
}

func TestSession_Timeout(t *testing.T) {
	cfg := liveness.DefaultConfig()
	cfg.SessionTimeout = 200 * time.Millisecond
	srv := newTestServer(t, cfg)
	client := srv.dial(t, screenQuery())

	st, err := client.ReadStatus()
	require.NoError(t, err)
	assert.Equal(t, entity.FeedbackTimeout, st.Feedback)
	assert.Equal(t, entity.PhasePosition, st.Phase)

	_, err = client.ReadStatus()
	assert.True(t, websocketPkg.IsNormalClose(err), "expected normal close, got %v", err)
}

func TestSession_RejectsBadQuery(t *testing.T) {
	srv := newTestServer(t, liveness.DefaultConfig())

	tests := []struct {
		name string
		q    websocketPkg.SessionQuery
	}{
		{"zero screen", websocketPkg.SessionQuery{ScreenWidth: 0, ScreenHeight: 800}},
		{"unknown policy", websocketPkg.SessionQuery{ScreenWidth: 400, ScreenHeight: 800, Policy: "strict"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint, err := websocketPkg.SessionURL(srv.wsURL, tt.q)
			require.NoError(t, err)

			_, err = websocketPkg.Dial(context.Background(), srv.logger, endpoint, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "status 400")
		})
	}

	resp, err := srv.app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/liveness/ws?screen_width=400&screen_height=800", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/liveness/ws?screen_width=400&screen_height=800&policy=strict", nil)
	req.Header.Set(fiber.HeaderConnection, "Upgrade")
	req.Header.Set(fiber.HeaderUpgrade, "websocket")
	resp, err = srv.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body handlerUtil.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INVALID_POLICY", body.Code)
}

func TestGuide(t *testing.T) {
	srv := newTestServer(t, liveness.DefaultConfig())

	resp := srv.postJSON(t, "/api/v1/liveness/guide", liveness.GuideRequest{ScreenWidth: 400, ScreenHeight: 800}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body liveness.GuideResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.InDelta(t, 280, body.Data.Width, 1e-9)
	assert.InDelta(t, 350, body.Data.Height, 1e-9)
	assert.InDelta(t, 0.5, body.Data.Normalized.CX, 1e-9)

	resp = srv.postJSON(t, "/api/v1/liveness/guide", liveness.GuideRequest{ScreenWidth: 0, ScreenHeight: 800}, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestClassify(t *testing.T) {
	srv := newTestServer(t, liveness.DefaultConfig())

	resp := srv.postJSON(t, "/api/v1/liveness/classify", liveness.ClassifyRequest{
		Screen: liveness.ScreenSize{Width: 400, Height: 800},
		Frame:  portraitFrame,
		Face:   centeredFace()[0],
	}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body liveness.ClassifyResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Data.Inside)
	assert.Equal(t, entity.DistanceOK, body.Data.Distance)

	resp = srv.postJSON(t, "/api/v1/liveness/classify", liveness.ClassifyRequest{
		Screen: liveness.ScreenSize{Width: 400, Height: 800},
		Face:   centeredFace()[0],
	}, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestVerifyRejectsMissingToken(t *testing.T) {
	srv := newTestServer(t, liveness.DefaultConfig())

	resp := srv.postJSON(t, "/api/v1/liveness/verify", struct{}{}, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var body handlerUtil.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, handlerUtil.ErrorResponse{Error: "invalid liveness attestation", Code: "INVALID_ATTESTATION"}, body)
}
