// Package ws serves live lookups over a websocket: the client sends HELLO,
// receives WELCOME with the dataset identity, then exchanges QUERY and
// RESULT/ERROR messages correlated by id.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"fdv.tools/internal/protocol"
	"fdv.tools/internal/query"
)

const (
	handshakeTimeout = 5 * time.Second
	idleTimeout      = 60 * time.Second
	writeTimeout     = 5 * time.Second
	outQueue         = 16
	maxMessageBytes  = 64 * 1024
)

type Server struct {
	svc *query.Service
	log *zap.Logger

	upgrader websocket.Upgrader
	sessions atomic.Int64
}

func NewServer(svc *query.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		svc: svc,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // local tool
		},
	}
}

// Active reports the number of open sessions.
func (s *Server) Active() int64 { return s.sessions.Load() }

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.SetReadLimit(maxMessageBytes)

		sessionID, ok := s.handshake(conn)
		if !ok {
			return
		}
		s.sessions.Add(1)
		defer s.sessions.Add(-1)
		log := s.log.With(zap.String("session", sessionID))
		log.Debug("ws session open")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		out := make(chan []byte, outQueue)
		writerDone := make(chan struct{})

		// Writer goroutine.
		go func() {
			defer close(writerDone)
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(idleTimeout))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			reply := s.answer(msg)
			b, err := json.Marshal(reply)
			if err != nil {
				log.Error("ws marshal", zap.Error(err))
				continue
			}
			select {
			case out <- b:
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				break
			}
		}
		cancel()
		<-writerDone
		log.Debug("ws session closed")
	}
}

// answer turns one client frame into a RESULT or ERROR message.
func (s *Server) answer(msg []byte) any {
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeQuery {
		return errorMsg("", protocol.ErrBadRequest, "expected QUERY")
	}
	if err := protocol.ValidateJSON(protocol.SchemaQuery, msg); err != nil {
		return errorMsg("", protocol.ErrBadRequest, err.Error())
	}
	var q protocol.QueryMsg
	if err := json.Unmarshal(msg, &q); err != nil {
		return errorMsg("", protocol.ErrBadRequest, err.Error())
	}
	if q.ProtocolVersion != "" && q.ProtocolVersion != protocol.Version {
		return errorMsg(q.ID, protocol.ErrBadRequest, "bad protocol_version")
	}
	data, err := s.svc.Do(q.Op, q.Params)
	if err != nil {
		code := protocol.CodeFor(err)
		if code == protocol.ErrInternal {
			s.log.Error("ws query failed", zap.String("op", q.Op), zap.Error(err))
		}
		return errorMsg(q.ID, code, err.Error())
	}
	return protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		ID:              q.ID,
		Op:              q.Op,
		Data:            data,
	}
}

func (s *Server) handshake(conn *websocket.Conn) (string, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", false
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closeWith(conn, "expected HELLO")
		return "", false
	}
	if err := protocol.ValidateJSON(protocol.SchemaHello, msg); err != nil {
		closeWith(conn, "bad HELLO")
		return "", false
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", false
	}
	if hello.ProtocolVersion != protocol.Version {
		closeWith(conn, "bad protocol_version")
		return "", false
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       uuid.NewString(),
		Dataset:         s.svc.DatasetInfo(),
	}
	if err := writeJSON(conn, welcome); err != nil {
		return "", false
	}
	return welcome.SessionID, true
}

func errorMsg(id, code, message string) protocol.ErrorMsg {
	return protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		ID:              id,
		Code:            code,
		Message:         message,
	}
}

func closeWith(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
		time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, b)
}
