package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"argus-dashboard-go/internal/logging"
	"argus-dashboard-go/internal/services/connection"
)

// SessionHandler exposes the session control surface: connect, disconnect,
// status.
type SessionHandler struct {
	svc *connection.Service
}

func NewSessionHandler(svc *connection.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type ConnectRequest struct {
	SessionID string `json:"session_id"`
}

type SessionResponse struct {
	SessionID string `json:"session_id,omitempty"`
	State     string `json:"state"`
}

// @Summary Open a streaming session
// @Description Connect to the tracking backend's streaming channel. A session id is generated when omitted.
// @Tags session
// @Accept json
// @Produce json
// @Param request body ConnectRequest false "Session parameters"
// @Success 200 {object} SessionResponse
// @Failure 409 {object} map[string]interface{}
// @Router /session/connect [post]
func (h *SessionHandler) Connect(c *gin.Context) {
	var req ConnectRequest
	// Body is optional; an empty one asks for a generated session id.
	_ = c.ShouldBindJSON(&req)
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	if err := h.svc.Connect(c.Request.Context(), req.SessionID); err != nil {
		logging.Warn(c).Err(err).Str("session_id", req.SessionID).Msg("Session connect failed")
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   err.Error(),
			"state":   h.svc.State().String(),
		})
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		SessionID: req.SessionID,
		State:     h.svc.State().String(),
	})
}

// @Summary Close the streaming session
// @Description Disconnect from the backend. Manual disconnects never trigger a reconnect.
// @Tags session
// @Accept json
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /session/disconnect [post]
func (h *SessionHandler) Disconnect(c *gin.Context) {
	h.svc.Disconnect()
	c.JSON(http.StatusOK, SessionResponse{State: h.svc.State().String()})
}

// @Summary Session status
// @Description Current connection state and backend capability flags
// @Tags session
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /session/status [get]
func (h *SessionHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"session_id":   h.svc.SessionID(),
		"state":        h.svc.State().String(),
		"capabilities": h.svc.Capabilities(),
	})
}
