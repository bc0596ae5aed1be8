package render

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Message types pushed to the drawing surface.
const (
	msgFrame           = "frame"
	msgHighlight       = "highlight"
	msgClearHighlights = "clear_highlights"
	msgNotification    = "notification"
)

// Event types received from the drawing surface.
const (
	evNodeClicked = "node_clicked"
	evDragStart   = "drag_start"
	evDragMove    = "drag_move"
	evDragEnd     = "drag_end"
	evCancel      = "cancel"
)

type envelope struct {
	Type      string      `json:"type"`
	Frame     *Frame      `json:"frame,omitempty"`
	Highlight *Highlight  `json:"highlight,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
}

type inboundEvent struct {
	Type   string  `json:"type"`
	NodeID string  `json:"node_id,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
}

// WSRenderer drives a browser drawing surface over a websocket. Writes
// are serialized; gorilla connections do not allow concurrent writers.
type WSRenderer struct {
	mu   sync.Mutex
	conn *websocket.Conn
	log  *zap.Logger
}

func NewWSRenderer(conn *websocket.Conn, log *zap.Logger) *WSRenderer {
	return &WSRenderer{conn: conn, log: log}
}

func (r *WSRenderer) write(env envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return fmt.Errorf("websocket closed")
	}
	return r.conn.WriteJSON(env)
}

func (r *WSRenderer) Draw(ctx context.Context, frame Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.write(envelope{Type: msgFrame, Frame: &frame})
}

func (r *WSRenderer) Highlight(ctx context.Context, h Highlight) error {
	return r.write(envelope{Type: msgHighlight, Highlight: &h})
}

func (r *WSRenderer) ClearHighlights(ctx context.Context) error {
	return r.write(envelope{Type: msgClearHighlights})
}

// Notify pushes a user notification over the same channel, making the
// renderer usable as a notify.Notifier sink.
func (r *WSRenderer) Notify(message string, severity string) error {
	return r.write(envelope{Type: msgNotification, Payload: map[string]string{
		"message":  message,
		"severity": severity,
	}})
}

func (r *WSRenderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		r.conn.Close()
		r.conn = nil
	}
}

// ReadLoop dispatches pointer events to the handler until the connection
// drops or the context is cancelled.
func (r *WSRenderer) ReadLoop(ctx context.Context, handler EventHandler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, data, err := r.conn.ReadMessage()
		if err != nil {
			return err
		}
		var ev inboundEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			if r.log != nil {
				r.log.Debug("ignoring malformed renderer event", zap.Error(err))
			}
			continue
		}
		switch ev.Type {
		case evNodeClicked:
			if handler.NodeClicked != nil {
				handler.NodeClicked(ev.NodeID)
			}
		case evDragStart:
			if handler.DragStart != nil {
				handler.DragStart(ev.NodeID, ev.X, ev.Y)
			}
		case evDragMove:
			if handler.DragMove != nil {
				handler.DragMove(ev.X, ev.Y)
			}
		case evDragEnd:
			if handler.DragEnd != nil {
				handler.DragEnd(ev.NodeID)
			}
		case evCancel:
			if handler.Cancel != nil {
				handler.Cancel()
			}
		default:
			if r.log != nil {
				r.log.Debug("unknown renderer event type", zap.String("type", ev.Type))
			}
		}
	}
}
