package livenessHandler

import (
	"ProjectLiveness/internal/api/liveness"
	livenessService "ProjectLiveness/internal/api/liveness/service"
	"ProjectLiveness/internal/entity"
	"ProjectLiveness/internal/middleware"
	contextPkg "ProjectLiveness/pkg/context"
	"ProjectLiveness/pkg/handlerUtil"
	"ProjectLiveness/pkg/log"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const writeTimeout = 5 * time.Second

// sessionConn serializes writes: statuses come from the writer goroutine while
// error frames come from the reader goroutine.
type sessionConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *sessionConn) writeJSON(v interface{}) error {
	payload, err := jsoniter.Marshal(v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *sessionConn) close(code int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(writeTimeout))
}

// handleSession runs one liveness attempt. The read loop below is the frame
// context: it owns the session and is the only caller of ProcessFrame. The
// writer goroutine is the UI context: it only drains the status mailbox, so a
// slow client sees the latest status instead of a backlog.
func (h *LivenessHandler) handleSession(c *websocket.Conn) {
	params, _ := c.Locals(sessionParamsKey).(livenessService.SessionParams)
	requestID, _ := c.Locals(middleware.RequestIDKey).(string)

	ctx, cancel := context.WithCancel(contextPkg.FromRequestID(requestID))
	defer cancel()

	conn := &sessionConn{conn: c}

	session, err := h.livenessService.NewSession(params, livenessService.WithSuccessHook(h.signAttestation))
	if err != nil {
		log.WithRequestID(ctx).WithError(err).Warn("Failed to start liveness session")
		h.writeError(conn, err)
		conn.close(websocket.ClosePolicyViolation, handlerUtil.ErrorCode(err))
		return
	}

	ctx = contextPkg.WithSessionID(ctx, session.ID())
	logger := log.WithSession(ctx, contextPkg.GetSessionID(ctx))
	logger.WithField("language", session.Language()).Info("Liveness session started")

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeStatuses(ctx, conn, session, logger)
	}()

	reason := h.readFrames(c, conn, session, logger)

	session.Close()
	<-writerDone

	logger.WithFields(log.Fields{
		"reason":    reason,
		"phase":     session.Phase(),
		"published": session.Statuses().Published(),
		"dropped":   session.Statuses().Drops(),
	}).Info("Liveness session finished")

	conn.close(websocket.CloseNormalClosure, reason)
}

// readFrames processes client messages until liveness is confirmed, the
// client goes quiet for SessionTimeout, or the connection fails. It returns
// why the session ended.
func (h *LivenessHandler) readFrames(c *websocket.Conn, conn *sessionConn, session *livenessService.Session, logger *logrus.Entry) string {
	timeout := h.livenessService.Config().SessionTimeout

	for {
		if err := c.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			logger.Errorf("Error setting read deadline: %v", err)
			return "error"
		}

		_, message, err := c.ReadMessage()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				session.Expire(h.utils.UnixMilli(time.Now()))
				return "timeout"
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warnf("Liveness websocket error: %v", err)
			}
			return "closed"
		}

		var msg liveness.ClientMessage
		if err := jsoniter.Unmarshal(message, &msg); err != nil {
			h.writeError(conn, liveness.ErrInvalidArgument)
			continue
		}

		switch msg.Type {
		case liveness.MessageFrame:
			nowMs := msg.TimestampMs
			if nowMs == 0 {
				nowMs = h.utils.UnixMilli(time.Now())
			}

			_, err := session.ProcessFrame(entity.FrameObservation{
				TimestampMs: nowMs,
				Frame:       msg.Frame,
				Faces:       msg.Faces,
			})
			if err != nil {
				h.writeError(conn, err)
				continue
			}

			if session.Succeeded() {
				return "confirmed"
			}

		case liveness.MessageScreen:
			if msg.Screen == nil {
				h.writeError(conn, liveness.ErrInvalidArgument)
				continue
			}
			if err := session.UpdateScreen(msg.Screen.Width, msg.Screen.Height); err != nil {
				h.writeError(conn, err)
				continue
			}
			logger.WithFields(log.Fields{
				"screen_w": msg.Screen.Width,
				"screen_h": msg.Screen.Height,
			}).Debug("Guide recomputed")

		case liveness.MessageReset:
			session.Reset()

		default:
			h.writeError(conn, liveness.ErrInvalidArgument)
		}
	}
}

func (h *LivenessHandler) writeStatuses(ctx context.Context, conn *sessionConn, session *livenessService.Session, logger *logrus.Entry) {
	for {
		status, ok := session.Statuses().Next(ctx)
		if !ok {
			return
		}

		if err := conn.writeJSON(status); err != nil {
			logger.Debugf("Error writing status: %v", err)
			return
		}
	}
}

func (h *LivenessHandler) writeError(conn *sessionConn, err error) {
	if writeErr := conn.writeJSON(liveness.ErrorMessage{
		Error: err.Error(),
		Code:  handlerUtil.ErrorCode(err),
	}); writeErr != nil {
		h.log.Debugf("Error sending error frame: %v", writeErr)
	}
}

// signAttestation runs on the frame that confirms liveness.
func (h *LivenessHandler) signAttestation(status *entity.Status) {
	token, _, err := h.attestation.Sign(status.SessionID, string(status.Policy), time.Now())
	if err != nil {
		h.log.WithFields(log.Fields{
			"session_id": status.SessionID,
			"error":      err.Error(),
		}).Error("Failed to sign liveness attestation")
		return
	}
	status.Attestation = token
}
