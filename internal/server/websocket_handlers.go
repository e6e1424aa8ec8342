package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/barkit/internal/scanner"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin filtering is handled by the CORS configuration upstream
		return true
	},
}

// LiveFrame is one grayscale frame pushed over the live decode socket. The
// pixel bytes travel base64-encoded inside the JSON text message.
type LiveFrame struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Image  []byte `json:"image"`
}

// LiveResult answers one frame. Document carries the decode document on
// success; Error is set instead when the frame could not be processed.
type LiveResult struct {
	Frame    int               `json:"frame"`
	Document *scanner.Response `json:"document,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// liveConnWriter is the subset of *websocket.Conn the senders need.
type liveConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// liveDecodeHandler upgrades the connection and decodes frames until the
// client hangs up. Frame errors are reported per frame; the feed survives
// bad frames.
func (s *Server) liveDecodeHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("live decode connection established", "remote_addr", r.RemoteAddr)
	s.handleLiveConnection(conn)
}

// handleLiveConnection processes frames from a live decode connection.
func (s *Server) handleLiveConnection(conn *websocket.Conn) {
	// Read deadline keeps dead cameras from pinning the connection
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	done := make(chan struct{})
	defer close(done)

	// Ping to keep intermediaries from closing the connection
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	frame := 0
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("live decode connection error", "error", err)
			}
			return
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType != websocket.TextMessage {
			continue
		}
		frame++
		s.handleLiveFrame(conn, data, frame)
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	}
}

// handleLiveFrame decodes a single frame and answers it.
func (s *Server) handleLiveFrame(conn liveConnWriter, data []byte, frame int) {
	var req LiveFrame
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendLiveResult(conn, LiveResult{Frame: frame, Error: "invalid frame: " + err.Error()})
		return
	}

	start := time.Now()
	res, err := s.decode(context.Background(), req.Image, req.Width, req.Height)
	duration := time.Since(start)

	if err != nil {
		decodeRequestsTotal.WithLabelValues("websocket", "error").Inc()
		s.sendLiveResult(conn, LiveResult{Frame: frame, Error: err.Error()})
		return
	}

	decodeRequestsTotal.WithLabelValues("websocket", "success").Inc()
	decodeDuration.WithLabelValues("websocket").Observe(duration.Seconds())
	barcodesDecoded.WithLabelValues("websocket").Observe(float64(res.Count()))

	s.sendLiveResult(conn, LiveResult{Frame: frame, Document: res})
}

// sendLiveResult sends one frame answer over the socket.
func (s *Server) sendLiveResult(conn liveConnWriter, result LiveResult) {
	data, err := json.Marshal(result)
	if err != nil {
		slog.Error("failed to marshal live result", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("failed to send live result", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
