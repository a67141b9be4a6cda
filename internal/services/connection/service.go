// Package connection owns the streaming session to the tracking backend:
// the websocket transport, its reconnect state machine, and the health
// probe that gates new sessions. Parsed frames are dispatched into the
// tracking pipeline in strict arrival order.
package connection

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"argus-dashboard-go/internal/config"
	"argus-dashboard-go/internal/logging"
	"argus-dashboard-go/internal/models"
	"argus-dashboard-go/internal/pipeline"
)

// FramePublisher forwards per-frame digests to interested consumers.
// Optional; a nil publisher disables publishing.
type FramePublisher interface {
	PublishFrame(summary models.FrameSummary) error
}

// Stats is a snapshot of the session counters.
type Stats struct {
	State            string `json:"state"`
	SessionID        string `json:"session_id,omitempty"`
	FramesProcessed  int64  `json:"frames_processed"`
	FramesDropped    int64  `json:"frames_dropped"`
	MessagesDropped  int64  `json:"messages_dropped"`
	BinaryFrames     int64  `json:"binary_frames"`
	Reconnects       int64  `json:"reconnects"`
	LastFrameIndex   int64  `json:"last_frame_index"`
	BackendHealthy   bool   `json:"backend_healthy"`
	TrajectoryCount  int    `json:"trajectory_count"`
	ColorAssignments int    `json:"color_assignments"`
}

// Service manages the streaming session lifecycle feeding the pipeline.
//
// State transitions: Disconnected -> Connecting -> Connected, with
// Connected -> Reconnecting -> Connecting on abnormal closure. A manual
// Disconnect is terminal for the session; no reconnect fires after it.
type Service struct {
	cfg       *config.Config
	log       zerolog.Logger
	processor *pipeline.Processor
	publisher FramePublisher
	health    *HealthProbe

	state int32

	connMu sync.RWMutex
	conn   *websocket.Conn

	sessionMu    sync.RWMutex
	sessionID    string
	capabilities models.ConnectionEstablished

	// One pending reconnect timer at most; always cancelled before a new
	// one is armed and on manual disconnect.
	timerMu        sync.Mutex
	reconnectTimer *time.Timer

	manual   atomic.Bool
	stopped  atomic.Bool
	stopOnce sync.Once
	wg       sync.WaitGroup

	callbackMu sync.RWMutex
	onFrame    func(*models.FrameResult)
	onBinary   func([]byte)

	framesDropped   atomic.Int64
	messagesDropped atomic.Int64
	binaryFrames    atomic.Int64
	reconnects      atomic.Int64
}

// NewService wires the connection manager. publisher may be nil.
func NewService(cfg *config.Config, processor *pipeline.Processor, publisher FramePublisher, health *HealthProbe, log zerolog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		log:       log,
		processor: processor,
		publisher: publisher,
		health:    health,
	}
}

// SetCallbacks registers the rendering-boundary frame callback and the
// opaque binary-frame handler. Either may be nil.
func (s *Service) SetCallbacks(onFrame func(*models.FrameResult), onBinary func([]byte)) {
	s.callbackMu.Lock()
	defer s.callbackMu.Unlock()
	s.onFrame = onFrame
	s.onBinary = onBinary
}

func (s *Service) setState(state models.ConnectionState) {
	atomic.StoreInt32(&s.state, int32(state))
}

func (s *Service) casState(from, to models.ConnectionState) bool {
	return atomic.CompareAndSwapInt32(&s.state, int32(from), int32(to))
}

// State returns the current session state.
func (s *Service) State() models.ConnectionState {
	return models.ConnectionState(atomic.LoadInt32(&s.state))
}

// SessionID returns the id of the current session, empty when disconnected.
func (s *Service) SessionID() string {
	s.sessionMu.RLock()
	defer s.sessionMu.RUnlock()
	return s.sessionID
}

// Capabilities returns the backend capability flags from the handshake.
func (s *Service) Capabilities() []string {
	s.sessionMu.RLock()
	defer s.sessionMu.RUnlock()
	out := make([]string, len(s.capabilities.Capabilities))
	copy(out, s.capabilities.Capabilities)
	return out
}

// Connect opens a new streaming session. The health probe's last result
// gates the attempt: an unhealthy backend fails fast without dialing.
func (s *Service) Connect(ctx context.Context, sessionID string) error {
	if s.stopped.Load() {
		return fmt.Errorf("connection service is stopped")
	}
	if !s.casState(models.StateDisconnected, models.StateConnecting) {
		return fmt.Errorf("cannot connect from state %s", s.State())
	}

	if !s.backendReachable(ctx) {
		s.setState(models.StateDisconnected)
		return fmt.Errorf("backend is not healthy, refusing to open session")
	}

	s.manual.Store(false)
	s.sessionMu.Lock()
	s.sessionID = sessionID
	s.capabilities = models.ConnectionEstablished{}
	s.sessionMu.Unlock()

	if err := s.dial(ctx); err != nil {
		s.setState(models.StateDisconnected)
		return err
	}

	s.setState(models.StateConnected)
	sessionLog := logging.WithSession(s.log, sessionID)
	sessionLog.Info().Str("url", s.cfg.BackendWSURL).Msg("Streaming session established")

	s.wg.Add(1)
	go s.readLoop()

	return nil
}

// backendReachable consults the cached probe result, falling back to one
// synchronous check when no probe has completed yet.
func (s *Service) backendReachable(ctx context.Context) bool {
	if s.health == nil {
		return true
	}
	if _, ok := s.health.Last(); !ok {
		health, err := s.health.Check(ctx)
		return err == nil && health.Healthy()
	}
	return s.health.BackendHealthy()
}

func (s *Service) dial(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout:  s.cfg.HandshakeTimeout,
		EnableCompression: true,
	}

	conn, resp, err := dialer.DialContext(ctx, s.cfg.BackendWSURL, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("websocket dial failed: %w", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()
	return nil
}

// readLoop pulls messages off the streaming channel one at a time; frames
// are therefore processed strictly in arrival order.
func (s *Service) readLoop() {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("Read loop panic recovered")
			s.closeConn()
			s.onAbnormalClose()
		}
	}()

	for {
		s.connMu.RLock()
		conn := s.conn
		s.connMu.RUnlock()
		if conn == nil {
			return
		}

		if s.cfg.ReadTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
				s.log.Debug().Err(err).Msg("Failed to set read deadline")
			}
		}

		messageType, data, err := conn.ReadMessage()
		if err != nil {
			s.closeConn()
			if s.manual.Load() || s.stopped.Load() {
				return
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				s.log.Info().Msg("Streaming channel closed normally by backend")
				s.setState(models.StateDisconnected)
				return
			}
			s.log.Warn().Err(err).Msg("Streaming channel lost")
			s.onAbnormalClose()
			return
		}

		s.handleMessage(messageType, data)
	}
}

func (s *Service) handleMessage(messageType int, data []byte) {
	switch messageType {
	case websocket.BinaryMessage:
		// Opaque image data; not decoded by this core.
		s.binaryFrames.Add(1)
		s.callbackMu.RLock()
		handler := s.onBinary
		s.callbackMu.RUnlock()
		if handler != nil {
			handler(data)
		}
	case websocket.TextMessage:
		s.routeEnvelope(data)
	default:
		s.messagesDropped.Add(1)
	}
}

func (s *Service) routeEnvelope(data []byte) {
	var env models.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.messagesDropped.Add(1)
		s.log.Warn().Err(err).Msg("Dropping unparseable message")
		return
	}

	// Some backends nest the payload, others send it flat beside the type
	// field. Both shapes are accepted.
	payload := []byte(env.Payload)
	if len(payload) == 0 {
		payload = data
	}

	switch env.Type {
	case models.MessageTypeConnectionEstablished:
		s.handleConnectionEstablished(payload)
	case models.MessageTypeTrackingUpdate:
		s.handleTrackingUpdate(payload)
	case models.MessageTypeStatusUpdate, models.MessageTypeSystemStatus:
		s.log.Debug().Str("type", string(env.Type)).Msg("Backend status message")
	default:
		s.messagesDropped.Add(1)
		s.log.Warn().Str("type", string(env.Type)).Msg("Dropping message with unrecognized type")
	}
}

func (s *Service) handleConnectionEstablished(payload []byte) {
	var est models.ConnectionEstablished
	if err := json.Unmarshal(payload, &est); err != nil {
		s.messagesDropped.Add(1)
		s.log.Warn().Err(err).Msg("Dropping malformed connection_established message")
		return
	}

	s.sessionMu.Lock()
	s.capabilities = est
	s.sessionMu.Unlock()

	s.log.Info().
		Strs("capabilities", est.Capabilities).
		Bool("binary_frames", est.HasCapability(models.CapabilityBinaryFrames)).
		Bool("compression", est.HasCapability(models.CapabilityCompression)).
		Msg("Backend capabilities received")
}

func (s *Service) handleTrackingUpdate(payload []byte) {
	frame, dropped, err := pipeline.ParseAndSanitize(payload)
	if err != nil {
		// The whole frame is dropped; partial acceptance would skew
		// downstream aggregates.
		s.framesDropped.Add(1)
		s.log.Warn().Err(err).Msg("Dropping tracking frame that failed validation")
		return
	}

	result, err := s.processor.Process(frame, dropped)
	if err != nil {
		// Geometry errors indicate camera misconfiguration; the message
		// carries the camera and frame index for debugging.
		s.framesDropped.Add(1)
		s.log.Error().Err(err).Int64("frame", frame.GlobalFrameIndex).Msg("Frame processing failed")
		return
	}

	s.callbackMu.RLock()
	onFrame := s.onFrame
	s.callbackMu.RUnlock()
	if onFrame != nil {
		onFrame(result)
	}

	if s.publisher != nil {
		summary := models.FrameSummary{
			GlobalFrameIndex: result.GlobalFrameIndex,
			SceneID:          result.SceneID,
			TimestampUTC:     result.TimestampUTC,
			CameraCount:      len(result.Cameras),
			DetectionCount:   result.DetectionCount,
			GlobalIDs:        result.GlobalIDs,
			DroppedTracks:    result.DroppedTracks,
		}
		if err := s.publisher.PublishFrame(summary); err != nil {
			s.log.Warn().Err(err).Int64("frame", result.GlobalFrameIndex).Msg("Failed to publish frame summary")
		}
	}
}

// onAbnormalClose moves the session into Reconnecting and arms the single
// reconnect timer.
func (s *Service) onAbnormalClose() {
	if s.manual.Load() || s.stopped.Load() {
		return
	}
	if !s.casState(models.StateConnected, models.StateReconnecting) {
		// Already reconnecting or torn down; never arm a second timer.
		return
	}
	s.scheduleReconnect()
}

func (s *Service) scheduleReconnect() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if s.manual.Load() || s.stopped.Load() {
		return
	}
	if s.reconnectTimer != nil {
		// A timer is already pending; overlapping timers are the classic
		// leaked-reconnect bug.
		return
	}

	s.log.Info().Dur("delay", s.cfg.ReconnectDelay).Msg("Scheduling reconnect")
	s.reconnectTimer = time.AfterFunc(s.cfg.ReconnectDelay, s.attemptReconnect)
}

func (s *Service) attemptReconnect() {
	s.timerMu.Lock()
	s.reconnectTimer = nil
	s.timerMu.Unlock()

	if s.manual.Load() || s.stopped.Load() {
		return
	}
	if !s.casState(models.StateReconnecting, models.StateConnecting) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.HandshakeTimeout)
	defer cancel()

	if !s.backendReachable(ctx) {
		s.log.Warn().Msg("Backend still unhealthy, deferring reconnect")
		s.setState(models.StateReconnecting)
		s.scheduleReconnect()
		return
	}

	if err := s.dial(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Reconnect attempt failed")
		s.setState(models.StateReconnecting)
		s.scheduleReconnect()
		return
	}

	s.reconnects.Add(1)
	s.setState(models.StateConnected)
	sessionLog := logging.WithSession(s.log, s.SessionID())
	sessionLog.Info().Msg("Streaming session re-established")

	s.wg.Add(1)
	go s.readLoop()
}

func (s *Service) cancelReconnect() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
}

func (s *Service) closeConn() {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

// Disconnect closes the session at the user's request. Terminal for this
// session: any pending reconnect is cancelled and none is scheduled.
func (s *Service) Disconnect() {
	s.manual.Store(true)
	s.cancelReconnect()

	s.connMu.Lock()
	if s.conn != nil {
		deadline := time.Now().Add(time.Second)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client disconnect"), deadline)
		_ = s.conn.Close()
		s.conn = nil
	}
	s.connMu.Unlock()

	s.setState(models.StateDisconnected)
	s.sessionMu.Lock()
	s.sessionID = ""
	s.sessionMu.Unlock()

	s.log.Info().Msg("Streaming session closed")
}

// Stop tears the service down: pending timers are cancelled, the channel
// is closed, and the read loop is awaited. Idempotent.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)
		s.Disconnect()
		s.wg.Wait()
	})
}

// Snapshot collects the session counters for the stats surface.
func (s *Service) Snapshot() Stats {
	backendHealthy := false
	if s.health != nil {
		backendHealthy = s.health.BackendHealthy()
	}
	return Stats{
		State:            s.State().String(),
		SessionID:        s.SessionID(),
		FramesProcessed:  s.processor.FramesProcessed(),
		FramesDropped:    s.framesDropped.Load(),
		MessagesDropped:  s.messagesDropped.Load(),
		BinaryFrames:     s.binaryFrames.Load(),
		Reconnects:       s.reconnects.Load(),
		LastFrameIndex:   s.processor.LastFrameIndex(),
		BackendHealthy:   backendHealthy,
		TrajectoryCount:  s.processor.Trajectories().Count(),
		ColorAssignments: s.processor.Colors().Len(),
	}
}
