// Package ws serves the session websocket: message updates are pushed to the
// client and the client may submit or abort messages over the same socket.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/playground/internal/config"
	"github.com/xiaot623/gogo/playground/internal/domain"
	"github.com/xiaot623/gogo/playground/internal/hub"
	"github.com/xiaot623/gogo/playground/internal/service"
)

// Server handles WebSocket connections.
type Server struct {
	cfg      *config.Config
	hub      *hub.Hub
	service  *service.Service
	upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server.
func NewServer(cfg *config.Config, h *hub.Hub, svc *service.Service) *Server {
	return &Server{
		cfg:     cfg,
		hub:     h,
		service: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// RegisterRoutes registers the websocket endpoint.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/v1/sessions/:session_id/ws", s.HandleWebSocket)
}

// HandleWebSocket upgrades the request and subscribes the connection to the
// session's message updates.
func (s *Server) HandleWebSocket(c echo.Context) error {
	sessionID := c.Param("session_id")
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		return err
	}

	conn := s.hub.NewConnection(ws, sessionID)
	s.hub.Register(conn)

	ws.SetReadLimit(s.cfg.MaxMessageSize)

	go s.writePump(conn)
	go s.readPump(conn)

	return nil
}

// readPump reads commands from the WebSocket connection.
func (s *Server) readPump(conn *hub.Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		s.handleMessage(conn, message)
	}
}

// writePump writes queued updates to the WebSocket connection.
func (s *Server) writePump(conn *hub.Connection) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Failed to write message: %v", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches incoming commands.
func (s *Server) handleMessage(conn *hub.Connection, data []byte) {
	var base BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		s.sendError(conn, "", &domain.JSONParseError{Source: "websocket", Err: err})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
	defer cancel()

	switch base.Type {
	case TypeSendMessage:
		var msg SendMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(conn, base.RequestID, &domain.JSONParseError{Source: "websocket", Err: err})
			return
		}
		x, err := s.service.SendMessage(ctx, conn.SessionID, msg.Content)
		if err != nil {
			s.sendError(conn, base.RequestID, err)
			return
		}
		s.send(conn, SubmittedMessage{
			BaseMessage:        s.base(TypeSubmitted, base.RequestID, conn.SessionID),
			UserMessageID:      x.UserMessageID,
			AssistantMessageID: x.AssistantMessageID,
		})
	case TypeAbort:
		if _, err := s.service.AbortMessage(ctx, conn.SessionID); err != nil {
			s.sendError(conn, base.RequestID, err)
		}
	default:
		s.sendError(conn, base.RequestID, &domain.InvalidMessageTypeError{Type: base.Type})
	}
}

func (s *Server) base(msgType, requestID, sessionID string) BaseMessage {
	return BaseMessage{
		Type:      msgType,
		Ts:        time.Now().UnixMilli(),
		RequestID: requestID,
		SessionID: sessionID,
	}
}

func (s *Server) sendError(conn *hub.Connection, requestID string, err error) {
	s.send(conn, ErrorMessage{
		BaseMessage: s.base(TypeError, requestID, conn.SessionID),
		Error:       domain.Describe(err),
	})
}

// send queues v for this connection only.
func (s *Server) send(conn *hub.Connection, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("ERROR: failed to marshal websocket message: %v", err)
		return
	}
	if !conn.Enqueue(data) {
		log.Printf("WARN: connection %s buffer full, dropping message", conn.ID)
	}
}
