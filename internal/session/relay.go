package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dpetrov/elevator-cab/internal/domain"
	"github.com/dpetrov/elevator-cab/internal/queue"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	EnableCompression: true,
}

// Relay drains a cab's outbound StateChangeQueue, folds each event into
// GlobalState, and fans it out as JSON to every connected /ws/status
// client — the session/peer collaborator spec.md scopes out of the
// control engine itself.
type Relay struct {
	state  *GlobalState
	logger *slog.Logger

	server *http.Server

	connMu sync.RWMutex
	conns  map[*websocket.Conn]context.CancelFunc

	ctx    context.Context
	cancel context.CancelFunc
}

// NewRelay creates a relay bound to port, backed by state.
func NewRelay(port int, state *GlobalState, logger *slog.Logger) *Relay {
	ctx, cancel := context.WithCancel(context.Background())
	mux := http.NewServeMux()

	r := &Relay{
		state:  state,
		logger: logger,
		conns:  make(map[*websocket.Conn]context.CancelFunc),
		ctx:    ctx,
		cancel: cancel,
	}

	mux.HandleFunc("/ws/status", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET")
		r.handleStatus(w, req)
	})

	r.server = &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	return r
}

// Pump consumes sc from outbound until the queue is closed, folding each
// into GlobalState and broadcasting it to every connected peer. Run it in
// its own goroutine.
func (r *Relay) Pump(outbound *queue.StateChangeQueue) {
	for {
		sc, ok := outbound.Dequeue()
		if !ok {
			return
		}
		r.state.Update(sc.State)
		r.broadcast(sc)
	}
}

func (r *Relay) broadcast(sc domain.StateChange) {
	r.connMu.RLock()
	defer r.connMu.RUnlock()
	for conn := range r.conns {
		if err := conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
			r.logger.Warn("failed to set write deadline", slog.String("error", err.Error()))
			continue
		}
		if err := conn.WriteJSON(stateChangeJSON(sc)); err != nil {
			r.logger.Warn("failed to push state change to peer", slog.String("error", err.Error()))
		}
	}
}

// stateChangeJSON is the JSON shape pushed to peers: readable field names
// rather than the compact internal/wire binary encoding, since this is
// for observers/dashboards, not cab-to-cab wire traffic.
func stateChangeJSON(sc domain.StateChange) map[string]interface{} {
	return map[string]interface{}{
		"type":        sc.Type.String(),
		"changeFloor": sc.ChangeFloor,
		"elevatorId":  sc.State.ID,
		"lastFloor":   sc.State.LastFloor,
		"direction":   sc.State.Direction.String(),
		"stopped":     sc.State.Stopped,
		"doorOpen":    sc.State.DoorOpen,
		"timestamp":   sc.State.Timestamp,
	}
}

func (r *Relay) addConn(conn *websocket.Conn, cancel context.CancelFunc) {
	r.connMu.Lock()
	defer r.connMu.Unlock()
	r.conns[conn] = cancel
}

func (r *Relay) removeConn(conn *websocket.Conn) {
	r.connMu.Lock()
	defer r.connMu.Unlock()
	if cancel, ok := r.conns[conn]; ok {
		cancel()
		delete(r.conns, conn)
	}
}

func (r *Relay) handleStatus(w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.ctx)
	r.addConn(conn, cancel)
	defer r.removeConn(conn)

	for id, s := range r.state.Snapshot() {
		if err := conn.WriteJSON(map[string]interface{}{
			"elevatorId": id,
			"lastFloor":  s.LastFloor,
			"direction":  s.Direction.String(),
			"stopped":    s.Stopped,
			"doorOpen":   s.DoorOpen,
		}); err != nil {
			return
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutdown"),
				time.Now().Add(time.Second))
			return
		case <-pingTicker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins serving WebSocket connections. It blocks until Shutdown is
// called or the listener fails.
func (r *Relay) Start() error {
	r.logger.Info("starting session relay", slog.String("addr", r.server.Addr))
	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown closes every connection and stops the listener.
func (r *Relay) Shutdown(ctx context.Context) error {
	r.cancel()

	r.connMu.Lock()
	for conn, cancel := range r.conns {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutdown"),
			time.Now().Add(time.Second))
		cancel()
		conn.Close()
	}
	r.conns = make(map[*websocket.Conn]context.CancelFunc)
	r.connMu.Unlock()

	return r.server.Shutdown(ctx)
}
