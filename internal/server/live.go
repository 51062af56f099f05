package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/verte-zerg/speedtype/internal/metrics"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/practice"
	"github.com/verte-zerg/speedtype/internal/recorder"
	"github.com/verte-zerg/speedtype/internal/session"
	"github.com/verte-zerg/speedtype/internal/store"
	"github.com/verte-zerg/speedtype/internal/textsource"
)

// Live message types.
const (
	MsgStart    = "start"
	MsgInput    = "input"
	MsgReset    = "reset"
	MsgText     = "text"
	MsgSnapshot = "snapshot"
	MsgFinished = "finished"
	MsgResult   = "result"
	MsgError    = "error"
)

const (
	outboxSize     = 64
	writeWait      = 5 * time.Second
	maxMessageSize = 64 << 10
	loadTimeout    = 10 * time.Second
)

// ClientMessage is sent by the browser over /ws/practice.
type ClientMessage struct {
	Type   string `json:"type"`
	Buffer string `json:"buffer,omitempty"`
	Text   string `json:"text,omitempty"`
}

// ServerMessage is sent to the browser over /ws/practice.
type ServerMessage struct {
	Type         string           `json:"type"`
	Quote        *model.Quote     `json:"quote,omitempty"`
	Metrics      *metrics.Metrics `json:"metrics,omitempty"`
	Result       *model.Result    `json:"result,omitempty"`
	PersonalBest bool             `json:"personalBest,omitempty"`
	Error        string           `json:"error,omitempty"`
}

type liveConn struct {
	id       string
	username string
	conn     *websocket.Conn
	ctrl     *practice.Controller
	server   *Server

	writeMu   sync.Mutex
	outbox    chan ServerMessage
	done      chan struct{}
	closeOnce sync.Once
}

func (s *Server) upgrader() websocket.Upgrader {
	u := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	switch origin := s.opts.AllowedOrigin; origin {
	case "":
		// Same-host check from the upgrader.
	case "*":
		u.CheckOrigin = func(r *http.Request) bool { return true }
	default:
		u.CheckOrigin = func(r *http.Request) bool {
			got := r.Header.Get("Origin")
			return got == "" || got == origin
		}
	}
	return u
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username != "" {
		name, err := store.NormalizeUsername(username)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		username = name
	}
	up := s.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("websocket upgrade error: %v", err)
		return
	}
	lc := &liveConn{
		id:       uuid.NewString(),
		username: username,
		conn:     conn,
		server:   s,
		outbox:   make(chan ServerMessage, outboxSize),
		done:     make(chan struct{}),
	}
	lc.ctrl = practice.New(s.quotes, s.recorder, practice.Options{
		Username:   username,
		Session:    s.opts.Session,
		OnRecorded: lc.recorded,
	})
	lc.ctrl.Subscribe(session.ObserverFuncs{
		OnSnapshot: func(m metrics.Metrics) {
			lc.trySend(ServerMessage{Type: MsgSnapshot, Metrics: &m})
		},
		OnFinished: func(m metrics.Metrics) {
			lc.send(ServerMessage{Type: MsgFinished, Metrics: &m})
		},
	})

	s.liveMu.Lock()
	s.live[lc.id] = lc
	s.liveMu.Unlock()
	s.metrics.liveSessions.Inc()
	s.wg.Add(2)
	go lc.writeLoop()
	go lc.readLoop()
}

func (lc *liveConn) readLoop() {
	s := lc.server
	defer s.wg.Done()
	defer func() {
		lc.ctrl.Close()
		lc.shutdown()
		s.liveMu.Lock()
		delete(s.live, lc.id)
		s.liveMu.Unlock()
		s.metrics.liveSessions.Dec()
	}()

	lc.conn.SetReadLimit(maxMessageSize)
	lc.loadText("")
	for {
		var msg ClientMessage
		if err := lc.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Printf("websocket error for %s: %v", lc.id, err)
			}
			return
		}
		switch msg.Type {
		case MsgStart:
			lc.ctrl.Start()
		case MsgInput:
			if err := lc.ctrl.Input(msg.Buffer); err != nil {
				lc.send(ServerMessage{Type: MsgError, Error: err.Error()})
			}
		case MsgReset:
			lc.loadText(msg.Text)
		default:
			lc.send(ServerMessage{Type: MsgError, Error: "unknown message type: " + msg.Type})
		}
	}
}

// loadText replaces the session. Empty text fetches a new passage.
func (lc *liveConn) loadText(text string) {
	var q model.Quote
	var err error
	if text != "" {
		q, err = textsource.Custom(text)
		if err == nil {
			lc.ctrl.Use(q)
		}
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		q, err = lc.ctrl.Load(ctx)
		cancel()
	}
	if err != nil {
		lc.send(ServerMessage{Type: MsgError, Error: err.Error()})
		return
	}
	lc.send(ServerMessage{Type: MsgText, Quote: &q})
}

func (lc *liveConn) recorded(_ int64, out recorder.Outcome, err error) {
	lc.server.metrics.recordResult(out.Persisted, err)
	if err != nil {
		lc.server.logger.Printf("failed to record result for %s: %v", lc.username, err)
		lc.send(ServerMessage{Type: MsgError, Error: err.Error()})
		return
	}
	result := out.Result
	lc.send(ServerMessage{Type: MsgResult, Result: &result, PersonalBest: out.PersonalBest})
}

// trySend drops the message when the client is not keeping up.
func (lc *liveConn) trySend(msg ServerMessage) {
	select {
	case lc.outbox <- msg:
	case <-lc.done:
	default:
	}
}

func (lc *liveConn) send(msg ServerMessage) {
	select {
	case lc.outbox <- msg:
	case <-lc.done:
	}
}

func (lc *liveConn) writeLoop() {
	defer lc.server.wg.Done()
	for {
		select {
		case msg := <-lc.outbox:
			if err := lc.write(msg); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					lc.server.logger.Printf("websocket write failed for %s: %v", lc.id, err)
				}
				lc.shutdown()
				return
			}
		case <-lc.done:
			return
		}
	}
}

func (lc *liveConn) write(msg ServerMessage) error {
	lc.writeMu.Lock()
	defer lc.writeMu.Unlock()
	if err := lc.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return lc.conn.WriteJSON(msg)
}

func (lc *liveConn) shutdown() {
	lc.closeOnce.Do(func() {
		close(lc.done)
		lc.writeMu.Lock()
		_ = lc.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		lc.writeMu.Unlock()
		if cerr := lc.conn.Close(); cerr != nil {
			// Best-effort close of the websocket.
			_ = cerr
		}
	})
}
